package run_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-ap/knowledge-synthesizer/internal/llm"
	llmmocks "github.com/edu-ap/knowledge-synthesizer/internal/llm/mocks"
	"github.com/edu-ap/knowledge-synthesizer/internal/output"
	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
	patternmocks "github.com/edu-ap/knowledge-synthesizer/internal/pattern/mocks"
	"github.com/edu-ap/knowledge-synthesizer/internal/run"
	"github.com/edu-ap/knowledge-synthesizer/internal/synth"
)

// harness wires a runner over an in-memory catalog and a mocked
// completion client.
type harness struct {
	runner *run.Runner
	source *patternmocks.SourceMock
	client *llmmocks.ClientMock
}

func newHarness(t *testing.T, patterns []pattern.Pattern, complete func(ctx context.Context, req llm.Request) (string, error)) *harness {
	t.Helper()

	source := &patternmocks.SourceMock{
		FetchFunc: func(ctx context.Context) (*pattern.Catalog, error) {
			return &pattern.Catalog{FetchedAt: time.Now(), Patterns: patterns}, nil
		},
	}
	loader := pattern.NewLoader(source, pattern.NewMemoryStore(), pattern.LoaderConfig{})

	client := &llmmocks.ClientMock{CompleteFunc: complete}
	engine := synth.NewEngine(client, synth.Config{
		Model:          "gpt-4",
		RequestsPerMin: 600000,
		InitialBackoff: time.Millisecond,
		MaxRetries:     0,
	})

	return &harness{
		runner: run.NewRunner(loader, engine),
		source: source,
		client: client,
	}
}

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

var testPatterns = []pattern.Pattern{
	{Name: "summarize", Prompt: "Summarize."},
	{Name: "extract_wisdom", Prompt: "Extract."},
}

func echoComplete(ctx context.Context, req llm.Request) (string, error) {
	return "output for " + req.Instructions, nil
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("writes a combined document per input file", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")
		writeInput(t, dir, "b.md", "beta")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"all"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())
		assert.Equal(t, 4, summary.TotalJobs)
		require.Len(t, summary.Files, 2)

		body, err := os.ReadFile(filepath.Join(dir, "synthesis", "a.md"))
		require.NoError(t, err)
		assert.Contains(t, string(body), "## summarize")
		assert.Contains(t, string(body), "## extract_wisdom")
	})

	t.Run("separate mode writes one document per pattern", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"all"},
			Mode:      output.Separate,
			OutputDir: "synthesis",
			Suffix:    "_synthesis",
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())

		_, err = os.Stat(filepath.Join(dir, "synthesis", "a_summarize_synthesis.md"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "synthesis", "a_extract_wisdom_synthesis.md"))
		assert.NoError(t, err)
	})

	t.Run("existing output skips the file with zero API calls", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "synthesis"), 0o755))
		writeInput(t, filepath.Join(dir, "synthesis"), "a.md", "already done")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"all"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())
		assert.Equal(t, 0, summary.TotalJobs)
		require.Len(t, summary.Files, 1)
		assert.True(t, summary.Files[0].Skipped)
		assert.Empty(t, h.client.CompleteCalls())

		body, err := os.ReadFile(filepath.Join(dir, "synthesis", "a.md"))
		require.NoError(t, err)
		assert.Equal(t, "already done", string(body))
	})

	t.Run("force regenerates existing output", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "synthesis"), 0o755))
		writeInput(t, filepath.Join(dir, "synthesis"), "a.md", "stale")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"summarize"},
			OutputDir: "synthesis",
			Force:     true,
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())
		assert.NotEmpty(t, h.client.CompleteCalls())

		body, err := os.ReadFile(filepath.Join(dir, "synthesis", "a.md"))
		require.NoError(t, err)
		assert.NotEqual(t, "stale", string(body))
	})

	t.Run("dry run makes no API calls and writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"all"},
			OutputDir: "synthesis",
			DryRun:    true,
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.DryRun)
		assert.Equal(t, 2, summary.TotalJobs)
		require.Len(t, summary.Files, 1)
		assert.Len(t, summary.Files[0].Planned, 1)
		assert.Empty(t, h.client.CompleteCalls())

		_, err = os.Stat(filepath.Join(dir, "synthesis"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("single file input", func(t *testing.T) {
		dir := t.TempDir()
		input := writeInput(t, dir, "notes.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      input,
			Patterns:  []string{"summarize"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())

		_, err = os.Stat(filepath.Join(dir, "synthesis", "notes.md"))
		assert.NoError(t, err)
	})

	t.Run("absolute output dir is used as given", func(t *testing.T) {
		dir := t.TempDir()
		outDir := t.TempDir()
		input := writeInput(t, dir, "notes.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		_, err := h.runner.Run(ctx, run.Config{
			Path:      input,
			Patterns:  []string{"summarize"},
			OutputDir: outDir,
		}, nil)

		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(outDir, "notes.md"))
		assert.NoError(t, err)
	})

	t.Run("unknown pattern aborts before any API call", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		_, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"nope"},
			OutputDir: "synthesis",
		}, nil)

		var unknownErr *pattern.UnknownPatternError
		require.ErrorAs(t, err, &unknownErr)
		assert.Empty(t, h.client.CompleteCalls())
	})

	t.Run("missing input path aborts the run", func(t *testing.T) {
		h := newHarness(t, testPatterns, echoComplete)

		_, err := h.runner.Run(ctx, run.Config{
			Path:      filepath.Join(t.TempDir(), "nope"),
			Patterns:  []string{"all"},
			OutputDir: "synthesis",
		}, nil)

		require.Error(t, err)
	})

	t.Run("failed pattern is reported but others still write", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, func(ctx context.Context, req llm.Request) (string, error) {
			if req.Instructions == "Extract." {
				return "", llm.ErrTokenLimit
			}
			return "fine", nil
		})

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"all"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.False(t, summary.OK())

		failures := summary.Files[0].Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, synth.FailureTokenLimit, failures[0].Kind)

		body, readErr := os.ReadFile(filepath.Join(dir, "synthesis", "a.md"))
		require.NoError(t, readErr)
		assert.Contains(t, string(body), "## summarize")
		assert.NotContains(t, string(body), "extract_wisdom")
	})

	t.Run("one failing file never aborts the others", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")
		writeInput(t, dir, "b.md", "beta")

		h := newHarness(t, testPatterns, func(ctx context.Context, req llm.Request) (string, error) {
			if req.Content == "alpha" {
				return "", &llm.APIError{StatusCode: 500, Message: "boom"}
			}
			return "fine", nil
		})

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"summarize"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.False(t, summary.OK())
		require.Len(t, summary.Files, 2)
		assert.False(t, summary.Files[0].OK())
		assert.True(t, summary.Files[1].OK())

		_, err = os.Stat(filepath.Join(dir, "synthesis", "b.md"))
		assert.NoError(t, err)
	})

	t.Run("local patterns layer over the catalog", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		localPath := filepath.Join(t.TempDir(), "patterns.yaml")
		require.NoError(t, os.WriteFile(localPath, []byte(`patterns:
  - name: custom
    prompt: Custom prompt.
`), 0o644))

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:              dir,
			Patterns:          []string{"custom"},
			LocalPatternsPath: localPath,
			OutputDir:         "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.True(t, summary.OK())

		calls := h.client.CompleteCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "Custom prompt.", calls[0].Req.Instructions)
	})

	t.Run("empty selection is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		_, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  nil,
			OutputDir: "synthesis",
		}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no patterns selected")
	})

	t.Run("summary carries a generated run name", func(t *testing.T) {
		dir := t.TempDir()
		writeInput(t, dir, "a.md", "alpha")

		h := newHarness(t, testPatterns, echoComplete)

		summary, err := h.runner.Run(ctx, run.Config{
			Path:      dir,
			Patterns:  []string{"summarize"},
			OutputDir: "synthesis",
		}, nil)

		require.NoError(t, err)
		assert.NotEmpty(t, summary.Name)
	})
}

func TestSummary_Render(t *testing.T) {
	t.Run("renders written, failed, and skipped lines", func(t *testing.T) {
		summary := &run.Summary{
			Name:      "focused-turing",
			TotalJobs: 2,
			Files: []*run.FileOutcome{
				{
					Input:   "/in/a.md",
					Written: []string{"/in/synthesis/a.md"},
				},
				{
					Input:   "/in/b.md",
					Skipped: true,
				},
				{
					Input: "/in/c.md",
					Results: []synth.Result{{
						Job:  synth.Job{InputPath: "/in/c.md", PatternName: "summarize"},
						Kind: synth.FailureRateLimit,
						Err:  llm.ErrRateLimited,
					}},
				},
			},
		}

		out := summary.Render()

		assert.Contains(t, out, "Run focused-turing")
		assert.Contains(t, out, "wrote /in/synthesis/a.md")
		assert.Contains(t, out, "skip  /in/b.md")
		assert.Contains(t, out, "rate_limit_exceeded")
		assert.Contains(t, out, "1 file(s) ok, 1 failed, 1 skipped")
	})

	t.Run("dry run renders planned targets", func(t *testing.T) {
		summary := &run.Summary{
			Name:   "calm-darwin",
			DryRun: true,
			Files: []*run.FileOutcome{
				{
					Input:   "/in/a.md",
					Planned: []string{"/in/synthesis/a.md"},
				},
			},
		}

		out := summary.Render()

		assert.Contains(t, out, "[dry run]")
		assert.Contains(t, out, "plan  /in/a.md -> /in/synthesis/a.md")
		assert.True(t, strings.HasSuffix(out, "1 file(s) ok, 0 failed, 0 skipped\n"))
	})
}
