// Package synth drives rate-limited, retryable completion calls for each
// (input file, pattern) pair in a batch run.
package synth

import (
	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
)

// Job is one unit of work: apply one pattern to one input file's content.
// Jobs are immutable once created.
type Job struct {
	InputPath   string
	PatternName string
	Prompt      string
	Content     string
}

// FailureKind classifies a job failure.
type FailureKind string

const (
	// FailureRateLimit means the API rate limit persisted through all
	// retries.
	FailureRateLimit FailureKind = "rate_limit_exceeded"

	// FailureTokenLimit means prompt plus content exceed the model's
	// context budget. Never retried.
	FailureTokenLimit FailureKind = "token_limit_exceeded"

	// FailureAPI covers every other API or transport error after
	// retries were exhausted.
	FailureAPI FailureKind = "api_error"
)

// Result is the outcome of exactly one Job.
type Result struct {
	Job    Job
	Output string // Completion text when the job succeeded

	// Failure details; Kind is empty on success.
	Kind FailureKind
	Err  error
}

// OK reports whether the job succeeded.
func (r *Result) OK() bool {
	return r.Kind == ""
}

// Jobs builds the cross product of patterns and file content for one
// input file, in pattern order.
func Jobs(inputPath, content string, patterns []pattern.Pattern) []Job {
	jobs := make([]Job, len(patterns))
	for i, p := range patterns {
		jobs[i] = Job{
			InputPath:   inputPath,
			PatternName: p.Name,
			Prompt:      p.Prompt,
			Content:     content,
		}
	}
	return jobs
}
