package synth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/edu-ap/knowledge-synthesizer/internal/llm"
	"github.com/edu-ap/knowledge-synthesizer/internal/slogger"
)

// Default engine tuning.
const (
	DefaultConcurrency    = 4
	DefaultRequestsPerMin = 60
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultCallTimeout    = 60 * time.Second
	DefaultTemperature    = 0.7
)

// Config tunes the engine. Zero values take the package defaults.
type Config struct {
	Model          string
	Temperature    float64
	Concurrency    int
	RequestsPerMin int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	CallTimeout    time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RequestsPerMin <= 0 {
		c.RequestsPerMin = DefaultRequestsPerMin
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
}

// Progress receives job completions as they happen. May be nil.
type Progress func(result *Result)

// Engine executes synthesis jobs under a shared rate limit.
type Engine struct {
	client  llm.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewEngine creates an engine over the given completion client. The rate
// limiter is shared by every job the engine ever runs; no job bypasses it.
func NewEngine(client llm.Client, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), 1),
	}
}

// Run executes all jobs and returns one result per job, positionally
// matching the input order. A job's failure never aborts the batch; only
// parent-context cancellation stops dispatch, and jobs not attempted are
// reported as failed with the cancellation error.
func (e *Engine) Run(ctx context.Context, jobs []Job, progress Progress) []Result {
	results := make([]Result, len(jobs))

	g := &errgroup.Group{}
	g.SetLimit(e.cfg.Concurrency)

	for i := range jobs {
		g.Go(func() error {
			results[i] = e.runJob(ctx, jobs[i])
			if progress != nil {
				progress(&results[i])
			}
			return nil
		})
	}

	// Workers never return errors; failures live in results.
	_ = g.Wait() //nolint:errcheck // workers always return nil

	return results
}

// runJob executes a single job under the shared limiter with retry.
func (e *Engine) runJob(ctx context.Context, job Job) Result {
	log := slogger.FromContext(ctx)
	result := Result{Job: job}

	req := llm.Request{
		Model:        e.cfg.Model,
		Instructions: job.Prompt,
		Content:      job.Content,
		Temperature:  e.cfg.Temperature,
	}

	var lastErr error
	var rateLimited bool

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, backoff(e.cfg.InitialBackoff, e.cfg.MaxBackoff, attempt)); err != nil {
				return failure(job, FailureAPI, err)
			}
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return failure(job, FailureAPI, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		output, err := e.client.Complete(callCtx, req)
		cancel()

		switch {
		case err == nil:
			result.Output = output
			return result

		case errors.Is(err, llm.ErrTokenLimit):
			// Retrying cannot shrink the input.
			return failure(job, FailureTokenLimit, err)

		case ctx.Err() != nil:
			return failure(job, FailureAPI, ctx.Err())

		case errors.Is(err, llm.ErrRateLimited):
			rateLimited = true
			lastErr = err

		default:
			// Transient transport/API failure, including per-call
			// timeouts.
			rateLimited = false
			lastErr = err
		}

		log.Debug("completion attempt failed",
			slog.String("input", job.InputPath),
			slog.String("pattern", job.PatternName),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
	}

	kind := FailureAPI
	if rateLimited {
		kind = FailureRateLimit
	}
	return failure(job, kind, lastErr)
}

// sleep waits for d or until ctx is done.
func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff returns the exponential delay before the given retry attempt
// (attempt >= 1), capped at maxBackoff.
func backoff(initial, maxBackoff time.Duration, attempt int) time.Duration {
	d := initial << uint(attempt-1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func failure(job Job, kind FailureKind, err error) Result {
	return Result{Job: job, Kind: kind, Err: err}
}
