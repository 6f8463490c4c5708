// Package output lays synthesis results out on disk in one of two modes:
// a single combined document per input file, or one document per
// (file, pattern) pair. Target paths are a pure function of the input
// path, pattern names, and options, so identical runs produce identical
// layouts.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edu-ap/knowledge-synthesizer/internal/synth"
)

const (
	fileMode = 0644
	dirMode  = 0755
)

// Mode selects the output layout.
type Mode int

const (
	// Combined writes one document per input file with all pattern
	// outputs concatenated under headings.
	Combined Mode = iota

	// Separate writes one document per (file, pattern) pair.
	Separate
)

func (m Mode) String() string {
	if m == Separate {
		return "separate"
	}
	return "combined"
}

// Options control target layout and write policy.
type Options struct {
	// Dir is the directory outputs are written to.
	Dir string

	// Suffix is appended to the input stem in every target name.
	Suffix string

	// Force overwrites existing targets instead of skipping.
	Force bool

	// DryRun suppresses all writes; the plan is still computed and
	// reported.
	DryRun bool
}

// FailedWrite records one pattern output that could not be persisted.
type FailedWrite struct {
	Path    string
	Pattern string
	Err     error
}

// PartialWriteError reports a write that failed partway. Already-written
// files are not rolled back; Written lists them.
type PartialWriteError struct {
	Written []string
	Failed  []FailedWrite
}

func (e *PartialWriteError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Pattern
	}
	return fmt.Sprintf("wrote %d file(s), failed to write outputs for: %s",
		len(e.Written), strings.Join(names, ", "))
}

// Plan is the derived output layout for one input file.
type Plan struct {
	InputPath string
	Mode      Mode
	Options   Options

	// targets maps pattern name to target path in Separate mode. In
	// Combined mode combined holds the single target.
	combined string
	targets  map[string]string
	order    []string
}

// NewPlan derives the output plan for an input file and the pattern names
// that will be applied to it.
func NewPlan(inputPath string, patternNames []string, mode Mode, opts Options) *Plan {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	p := &Plan{
		InputPath: inputPath,
		Mode:      mode,
		Options:   opts,
		order:     append([]string(nil), patternNames...),
	}

	if mode == Separate {
		p.targets = make(map[string]string, len(patternNames))
		for _, name := range patternNames {
			p.targets[name] = filepath.Join(opts.Dir, stem+"_"+name+opts.Suffix+".md")
		}
	} else {
		p.combined = filepath.Join(opts.Dir, stem+opts.Suffix+".md")
	}
	return p
}

// Targets returns the planned file paths in deterministic order.
func (p *Plan) Targets() []string {
	if p.Mode == Combined {
		return []string{p.combined}
	}
	out := make([]string, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.targets[name])
	}
	return out
}

// Exists reports whether every planned target already exists. The runner
// uses this before dispatching jobs: when true and Force is unset, the
// file is skipped without any API call.
func (p *Plan) Exists() bool {
	targets := p.Targets()
	if len(targets) == 0 {
		return false
	}
	for _, t := range targets {
		if _, err := os.Stat(t); err != nil {
			return false
		}
	}
	return true
}

// Write persists the successful results for the plan's input file and
// returns the written paths. Failure results are skipped here; the caller
// records them in the run summary. A partial persistence failure returns
// a *PartialWriteError; files already written stay in place.
func (p *Plan) Write(results []synth.Result) ([]string, error) {
	ok := successes(results)
	if len(ok) == 0 {
		return nil, nil
	}

	if p.Options.DryRun {
		return nil, nil
	}

	if err := os.MkdirAll(p.Options.Dir, dirMode); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if p.Mode == Separate {
		return p.writeSeparate(ok)
	}
	return p.writeCombined(ok)
}

// writeCombined concatenates all successful outputs under one heading per
// pattern.
func (p *Plan) writeCombined(results []synth.Result) ([]string, error) {
	var doc strings.Builder
	for _, r := range results {
		fmt.Fprintf(&doc, "\n## %s\n\n%s\n", r.Job.PatternName, r.Output)
	}

	if err := writeAtomic(p.combined, doc.String()); err != nil {
		return nil, &PartialWriteError{
			Failed: failedWrites(p.combined, results, err),
		}
	}
	return []string{p.combined}, nil
}

// writeSeparate writes one annotated document per successful pattern.
func (p *Plan) writeSeparate(results []synth.Result) ([]string, error) {
	var written []string
	var failed []FailedWrite

	for _, r := range results {
		target := p.targets[r.Job.PatternName]
		doc := fmt.Sprintf("> Source: %s\n\n%s\n", p.InputPath, r.Output)

		if err := writeAtomic(target, doc); err != nil {
			failed = append(failed, FailedWrite{
				Path:    target,
				Pattern: r.Job.PatternName,
				Err:     err,
			})
			continue
		}
		written = append(written, target)
	}

	if len(failed) > 0 {
		return written, &PartialWriteError{Written: written, Failed: failed}
	}
	return written, nil
}

// writeAtomic writes content to path via a temp file and rename, so an
// interrupted run never leaves a partial file at the final location.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}

	tmpPath = ""
	return nil
}

func successes(results []synth.Result) []synth.Result {
	var ok []synth.Result
	for _, r := range results {
		if r.OK() {
			ok = append(ok, r)
		}
	}
	return ok
}

func failedWrites(path string, results []synth.Result, err error) []FailedWrite {
	failed := make([]FailedWrite, len(results))
	for i, r := range results {
		failed[i] = FailedWrite{Path: path, Pattern: r.Job.PatternName, Err: err}
	}
	return failed
}
