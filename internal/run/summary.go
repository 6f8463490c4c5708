package run

import (
	"fmt"
	"strings"

	"github.com/edu-ap/knowledge-synthesizer/internal/output"
	"github.com/edu-ap/knowledge-synthesizer/internal/synth"
)

// FileOutcome is the per-input-file record of a run.
type FileOutcome struct {
	Input   string
	Planned []string // Target paths the plan derived
	Skipped bool     // Output existed and force was unset
	ReadErr error    // Input could not be read

	Results  []synth.Result
	Written  []string
	WriteErr error
}

// Failures returns the failed results for this file.
func (o *FileOutcome) Failures() []synth.Result {
	var failed []synth.Result
	for _, r := range o.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// OK reports whether the file fully succeeded (or was skipped).
func (o *FileOutcome) OK() bool {
	if o.Skipped {
		return true
	}
	if o.ReadErr != nil || o.WriteErr != nil {
		return false
	}
	return len(o.Failures()) == 0
}

// Summary is the run-level report.
type Summary struct {
	Name      string // Generated run name, e.g. "focused_turing"
	Mode      output.Mode
	DryRun    bool
	TotalJobs int
	Files     []*FileOutcome
}

// OK reports whether every file fully succeeded.
func (s *Summary) OK() bool {
	for _, f := range s.Files {
		if !f.OK() {
			return false
		}
	}
	return true
}

// Render formats the summary for the user and the run log.
func (s *Summary) Render() string {
	var b strings.Builder

	header := fmt.Sprintf("Run %s (%s mode)", s.Name, s.Mode)
	if s.DryRun {
		header += " [dry run]"
	}
	b.WriteString(header + "\n")

	for _, f := range s.Files {
		switch {
		case f.Skipped:
			fmt.Fprintf(&b, "  skip  %s (output exists, use --force to regenerate)\n", f.Input)
		case f.ReadErr != nil:
			fmt.Fprintf(&b, "  fail  %s: %v\n", f.Input, f.ReadErr)
		case s.DryRun:
			for _, t := range f.Planned {
				fmt.Fprintf(&b, "  plan  %s -> %s\n", f.Input, t)
			}
		default:
			for _, w := range f.Written {
				fmt.Fprintf(&b, "  wrote %s\n", w)
			}
			for _, r := range f.Failures() {
				fmt.Fprintf(&b, "  fail  %s x %s: %s: %v\n", f.Input, r.Job.PatternName, r.Kind, r.Err)
			}
			if f.WriteErr != nil {
				fmt.Fprintf(&b, "  fail  %s: %v\n", f.Input, f.WriteErr)
			}
		}
	}

	ok, failed, skipped := s.counts()
	fmt.Fprintf(&b, "%d file(s) ok, %d failed, %d skipped\n", ok, failed, skipped)
	return b.String()
}

func (s *Summary) counts() (ok, failed, skipped int) {
	for _, f := range s.Files {
		switch {
		case f.Skipped:
			skipped++
		case f.OK():
			ok++
		default:
			failed++
		}
	}
	return ok, failed, skipped
}
