// Package run orchestrates a full synthesis batch: catalog load, pattern
// resolution, content location, engine execution, and output writing.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edu-ap/knowledge-synthesizer/internal/content"
	"github.com/edu-ap/knowledge-synthesizer/internal/names"
	"github.com/edu-ap/knowledge-synthesizer/internal/output"
	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
	"github.com/edu-ap/knowledge-synthesizer/internal/slogger"
	"github.com/edu-ap/knowledge-synthesizer/internal/synth"
)

// catalogLoader is the internal interface for catalog access.
type catalogLoader interface {
	Get(ctx context.Context, bypass bool) (*pattern.Catalog, error)
}

// jobEngine is the internal interface for completion execution.
type jobEngine interface {
	Run(ctx context.Context, jobs []synth.Job, progress synth.Progress) []synth.Result
}

// Config describes one batch run.
type Config struct {
	// Path is the input file or directory.
	Path string

	// Recursive descends into subdirectories when Path is a directory.
	Recursive bool

	// Glob filters directory entries by base name. Defaults to *.md.
	Glob string

	// Patterns is the requested pattern selection; the single element
	// "all" selects every catalog pattern.
	Patterns []string

	// LocalPatternsPath optionally names a YAML file of user-defined
	// patterns layered over the remote catalog.
	LocalPatternsPath string

	// Mode selects combined or separate output layout.
	Mode output.Mode

	// OutputDir is the output directory name. A relative name is placed
	// inside the input's directory; an absolute path is used as given.
	OutputDir string

	// Suffix is appended to output file stems.
	Suffix string

	Force     bool
	DryRun    bool
	SkipCache bool
}

// Runner executes batch runs.
type Runner struct {
	loader catalogLoader
	engine jobEngine
}

// NewRunner creates a runner over the given catalog loader and engine.
func NewRunner(loader catalogLoader, engine jobEngine) *Runner {
	return &Runner{loader: loader, engine: engine}
}

// Run executes one batch. Failures of the catalog loader, resolver, or
// locator abort the run before any completion call is made; per-job
// failures are captured in the summary and never abort the batch.
func (r *Runner) Run(ctx context.Context, cfg Config, progress synth.Progress) (*Summary, error) {
	log := slogger.FromContext(ctx)

	summary := &Summary{
		Name:   names.Generate(),
		Mode:   cfg.Mode,
		DryRun: cfg.DryRun,
	}

	catalog, err := r.loader.Get(ctx, cfg.SkipCache)
	if err != nil {
		return nil, err
	}

	if cfg.LocalPatternsPath != "" {
		local, err := pattern.LoadLocal(cfg.LocalPatternsPath)
		if err != nil {
			return nil, err
		}
		if len(local) > 0 {
			catalog = catalog.Merge(local)
			log.Debug("merged local patterns", slog.Int("count", len(local)))
		}
	}

	selected, err := pattern.Resolve(cfg.Patterns, catalog)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no patterns selected")
	}

	files, err := content.Locate(cfg.Path, cfg.Recursive, cfg.Glob)
	if err != nil {
		return nil, err
	}

	opts := output.Options{
		Dir:    resolveOutputDir(cfg.Path, cfg.OutputDir),
		Suffix: cfg.Suffix,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	}

	patternNames := make([]string, len(selected))
	for i, p := range selected {
		patternNames[i] = p.Name
	}

	// Plan all files before dispatching anything: the skip decision for
	// existing outputs happens here, so a skipped file costs no API
	// calls.
	type fileWork struct {
		outcome *FileOutcome
		plan    *output.Plan
		start   int // index of the file's first job in allJobs
		count   int
	}

	var work []fileWork
	var allJobs []synth.Job

	for _, file := range files {
		outcome := &FileOutcome{Input: file}
		summary.Files = append(summary.Files, outcome)

		plan := output.NewPlan(file, patternNames, cfg.Mode, opts)
		outcome.Planned = plan.Targets()

		if !cfg.Force && plan.Exists() {
			outcome.Skipped = true
			log.Info("skipping, output already exists", slog.String("input", file))
			continue
		}

		body, err := os.ReadFile(file)
		if err != nil {
			outcome.ReadErr = fmt.Errorf("read input: %w", err)
			continue
		}

		work = append(work, fileWork{
			outcome: outcome,
			plan:    plan,
			start:   len(allJobs),
			count:   len(selected),
		})
		allJobs = append(allJobs, synth.Jobs(file, string(body), selected)...)
	}

	summary.TotalJobs = len(allJobs)

	// A dry run stops here: the plan is reported but no completion call
	// or filesystem mutation happens.
	if cfg.DryRun {
		return summary, nil
	}

	results := r.engine.Run(ctx, allJobs, progress)

	for _, w := range work {
		fileResults := results[w.start : w.start+w.count]
		w.outcome.Results = fileResults

		written, err := w.plan.Write(fileResults)
		w.outcome.Written = written
		w.outcome.WriteErr = err
		if err != nil {
			log.Error("write failed",
				slog.String("input", w.outcome.Input),
				slog.Any("error", err))
		}
	}

	return summary, nil
}

// resolveOutputDir places a relative output dir inside the input's
// directory; absolute paths are used as given.
func resolveOutputDir(inputPath, outputDir string) string {
	if filepath.IsAbs(outputDir) {
		return outputDir
	}

	base := inputPath
	if info, err := os.Stat(inputPath); err != nil || !info.IsDir() {
		base = filepath.Dir(inputPath)
	}
	return filepath.Join(base, outputDir)
}
