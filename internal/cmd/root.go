// Package cmd implements the ksynth CLI commands using Cobra.
// It provides commands for running batch synthesis, managing the pattern
// cache, and configuring credentials.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edu-ap/knowledge-synthesizer/internal/config"
	"github.com/edu-ap/knowledge-synthesizer/internal/slogger"
)

// appConfig holds the loaded application configuration.
var appConfig *config.Config

// configLoader is used for dot-key configuration access.
var configLoader *config.Loader

// verbosity counts -v flags for log level selection.
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "ksynth",
	Short: "Apply reusable prompt patterns to your local content",
	Long: `ksynth applies reusable prompt templates ("patterns") from the Fabric
pattern repository to local text files via the OpenAI completion API,
producing synthesized Markdown documents.

Patterns are cached locally for 24 hours; runs are rate limited and
retried, and a failing file or pattern never aborts the rest of the batch.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := slogger.New(slogger.Config{Verbosity: verbosity})

		ctx := cmd.Context()
		ctx = slogger.WithLogger(ctx, logger)
		ctx = WithConfig(ctx, appConfig)
		ctx = WithLoader(ctx, configLoader)
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, which is
// canceled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
}

func initConfig() {
	loader, err := config.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		return
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config validation failed: %v\n", err)
	}

	appConfig = cfg
	configLoader = loader
}
