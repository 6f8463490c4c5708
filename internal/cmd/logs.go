package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edu-ap/knowledge-synthesizer/internal/runlog"
)

var logsCmd = &cobra.Command{
	Use:   "logs [run-name]",
	Short: "View the log of a synthesis run",
	Long: `View the log of a synthesis run.

With no arguments, shows the most recent run. Use --list to see the
names of all recorded runs.`,
	Example: `  # View the most recent run
  ksynth logs

  # View a specific run
  ksynth logs happy-panda

  # Show last 500 lines
  ksynth logs happy-panda -n 500

  # Show the entire log
  ksynth logs happy-panda --full

  # List recorded runs
  ksynth logs --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogsCmd,
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	lines, err := cmd.Flags().GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}

	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("get list flag: %w", err)
	}

	cfg, err := requireConfig(cmd.Context())
	if err != nil {
		return err
	}
	pathMgr := runlog.NewPathManager(cfg.Storage.Logs)

	if list {
		runs, err := pathMgr.ListRuns()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, name := range runs {
			fmt.Println(name)
		}
		return nil
	}

	var runName string
	if len(args) == 1 {
		runName = args[0]
	} else {
		runName, err = pathMgr.Latest()
		if err != nil {
			return fmt.Errorf("find latest run: %w", err)
		}
		if runName == "" {
			return fmt.Errorf("no runs recorded yet")
		}
	}

	if !pathMgr.Exists(runName) {
		return fmt.Errorf("no log file found for run %s", runName)
	}

	reader := runlog.NewReader(pathMgr)

	var logLines []string
	if full {
		logLines, err = reader.ReadAll(runName)
	} else {
		logLines, err = reader.ReadLastN(runName, lines)
	}
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	for _, line := range logLines {
		fmt.Println(line)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntP("lines", "n", runlog.DefaultTailLines, "number of lines to show")
	logsCmd.Flags().Bool("full", false, "show the entire log")
	logsCmd.Flags().Bool("list", false, "list recorded runs instead of printing a log")
}
