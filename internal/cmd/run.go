package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/edu-ap/knowledge-synthesizer/internal/config"
	"github.com/edu-ap/knowledge-synthesizer/internal/llm"
	"github.com/edu-ap/knowledge-synthesizer/internal/output"
	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
	"github.com/edu-ap/knowledge-synthesizer/internal/progress"
	"github.com/edu-ap/knowledge-synthesizer/internal/prompt"
	"github.com/edu-ap/knowledge-synthesizer/internal/run"
	"github.com/edu-ap/knowledge-synthesizer/internal/runlog"
	"github.com/edu-ap/knowledge-synthesizer/internal/synth"
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Apply patterns to a file or directory",
	Long: `Run batch synthesis: apply the selected patterns to a file, or to every
file in a directory matching the glob, and write the results as Markdown.

When --patterns is not given, an interactive selector is shown. Outputs
that already exist are skipped unless --force is set; skipped files cost
no API calls.`,
	Example: `  # Process a single markdown file with chosen patterns
  ksynth run document.md --patterns summarize

  # Process a directory recursively with a custom glob
  ksynth run docs/ -r --pattern "*.txt" --patterns all

  # Preview the plan without API calls or writes
  ksynth run docs/ --dry-run --patterns all

  # One output file per pattern, regenerating existing outputs
  ksynth run docs/ --separate --force --patterns summarize,critique`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}

		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = cfg.Default.Model
		}
		// Unknown models fail before any network call.
		if !llm.IsValidModel(model) {
			return fmt.Errorf("invalid model %q (valid: %s)", model, strings.Join(llm.ValidModelNames(), ", "))
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		separate, _ := cmd.Flags().GetBool("separate")
		force, _ := cmd.Flags().GetBool("force")
		recursive, _ := cmd.Flags().GetBool("recursive")
		skipCache, _ := cmd.Flags().GetBool("skip-cache")
		glob, _ := cmd.Flags().GetString("pattern")
		outputDir, _ := cmd.Flags().GetString("output")
		suffix, _ := cmd.Flags().GetString("suffix")
		patternNames, _ := cmd.Flags().GetStringSlice("patterns")

		if glob == "" {
			glob = cfg.Default.Glob
		}
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		if suffix == "" {
			suffix = cfg.Output.Suffix
		}

		loader := buildPatternLoader(cfg)
		prompter := prompt.New()

		if len(patternNames) == 0 {
			if dryRun {
				// Keep dry runs non-interactive.
				patternNames = []string{pattern.SelectAll}
			} else {
				patternNames, err = selectPatterns(cmd, loader, prompter, skipCache)
				if err != nil {
					return err
				}
			}
		}

		var apiKey string
		if !dryRun {
			apiKey, err = resolveAPIKey(cfg, prompter)
			if err != nil {
				return err
			}
		}

		client := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		})
		engine := synth.NewEngine(client, synth.Config{
			Model:          model,
			Temperature:    cfg.API.Temperature,
			Concurrency:    cfg.API.Concurrency,
			RequestsPerMin: cfg.API.RateLimit,
			MaxRetries:     cfg.API.MaxRetries,
			InitialBackoff: cfg.API.InitialBackoff,
			CallTimeout:    cfg.API.Timeout,
		})

		mode := output.Combined
		if separate {
			mode = output.Separate
		}

		runner := run.NewRunner(loader, engine)
		runCfg := run.Config{
			Path:              args[0],
			Recursive:         recursive,
			Glob:              glob,
			Patterns:          patternNames,
			LocalPatternsPath: cfg.Patterns.Local,
			Mode:              mode,
			OutputDir:         outputDir,
			Suffix:            suffix,
			Force:             force,
			DryRun:            dryRun,
			SkipCache:         skipCache,
		}

		summary, err := execute(cmd, runner, runCfg, dryRun)
		if err != nil {
			return err
		}

		if err := report(cfg, summary); err != nil {
			return err
		}

		if !summary.OK() {
			return errors.New("some files failed; see summary above")
		}
		return nil
	},
}

// selectPatterns runs the interactive pattern selector over the catalog.
func selectPatterns(cmd *cobra.Command, loader *pattern.Loader, prompter prompt.Prompter, skipCache bool) ([]string, error) {
	catalog, err := loader.Get(cmd.Context(), skipCache)
	if err != nil {
		return nil, err
	}

	names, err := prompter.MultiChoice("Select patterns to apply", catalog.Names())
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no patterns selected")
	}
	return names, nil
}

// execute runs the batch, with a progress ticker when stderr is a
// terminal.
func execute(cmd *cobra.Command, runner *run.Runner, runCfg run.Config, dryRun bool) (*run.Summary, error) {
	var tracker *progress.Tracker
	var onJob synth.Progress

	if !dryRun && term.IsTerminal(int(os.Stderr.Fd())) {
		// Job totals aren't known until planning; size the ticker
		// optimistically and let it count up.
		tracker = progress.New(0, os.Stderr)
		go func() {
			//nolint:errcheck // display-only
			_ = tracker.Start()
		}()
		defer tracker.Stop()

		onJob = func(r *synth.Result) {
			label := fmt.Sprintf("%s x %s", filepath.Base(r.Job.InputPath), r.Job.PatternName)
			tracker.Observe(label, !r.OK())
		}
	}

	return runner.Run(cmd.Context(), runCfg, onJob)
}

// report prints the run summary and tees it into the run log.
func report(cfg *config.Config, summary *run.Summary) error {
	rendered := summary.Render()

	paths := runlog.NewPathManager(cfg.Storage.Logs)
	logPath, err := paths.EnsureRunLog(summary.Name)
	if err != nil {
		// Logging must not fail the run; print the summary anyway.
		fmt.Print(rendered)
		return nil
	}

	tee, err := runlog.NewTeeWriter(os.Stdout, logPath)
	if err != nil {
		fmt.Print(rendered)
		return nil
	}
	defer tee.Close()

	_, err = tee.Write([]byte(rendered))
	return err
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("patterns", nil, "pattern names to apply, or 'all' (interactive selector when omitted)")
	runCmd.Flags().String("model", "", "completion model (default from config)")
	runCmd.Flags().BoolP("recursive", "r", false, "process directories recursively")
	runCmd.Flags().String("pattern", "", "file glob to match in directories (default from config)")
	runCmd.Flags().Bool("dry-run", false, "show what would be processed without API calls or writes")
	runCmd.Flags().Bool("separate", false, "write each pattern's output to its own file")
	runCmd.Flags().Bool("force", false, "regenerate outputs that already exist")
	runCmd.Flags().String("output", "", "output directory name (default from config)")
	runCmd.Flags().String("suffix", "", "output file suffix (default from config)")
	runCmd.Flags().Bool("skip-cache", false, "bypass the pattern cache and fetch fresh patterns")
}
