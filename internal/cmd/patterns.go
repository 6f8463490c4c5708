package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and refresh the pattern catalog",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available patterns",
	Long: `List every pattern in the active catalog. Serves the local cache when it
is younger than the configured TTL; use --skip-cache to force a fetch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig(cmd.Context())
		if err != nil {
			return err
		}

		skipCache, _ := cmd.Flags().GetBool("skip-cache")

		catalog, err := buildPatternLoader(cfg).Get(cmd.Context(), skipCache)
		if err != nil {
			return err
		}

		if local, err := pattern.LoadLocal(cfg.Patterns.Local); err == nil && len(local) > 0 {
			catalog = catalog.Merge(local)
		}

		for _, p := range catalog.Patterns {
			if p.Description != "" {
				fmt.Printf("%s\t%s\n", p.Name, p.Description)
			} else {
				fmt.Println(p.Name)
			}
		}
		fmt.Printf("%d pattern(s), fetched %s\n", len(catalog.Patterns), catalog.FetchedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var patternsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a pattern's prompt text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig(cmd.Context())
		if err != nil {
			return err
		}

		catalog, err := buildPatternLoader(cfg).Get(cmd.Context(), false)
		if err != nil {
			return err
		}

		if local, err := pattern.LoadLocal(cfg.Patterns.Local); err == nil && len(local) > 0 {
			catalog = catalog.Merge(local)
		}

		selected, err := pattern.Resolve(args[:1], catalog)
		if err != nil {
			return err
		}

		fmt.Print(selected[0].Prompt)
		return nil
	},
}

var patternsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch fresh patterns and rewrite the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig(cmd.Context())
		if err != nil {
			return err
		}

		catalog, err := buildPatternLoader(cfg).Get(cmd.Context(), true)
		if err != nil {
			return err
		}

		fmt.Printf("Updated pattern cache: %d pattern(s)\n", len(catalog.Patterns))
		return nil
	},
}

var patternsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the local pattern cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig(cmd.Context())
		if err != nil {
			return err
		}

		if err := pattern.NewStore(cfg.Storage.Cache).Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Pattern cache cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	patternsCmd.AddCommand(patternsUpdateCmd)
	patternsCmd.AddCommand(patternsClearCmd)

	patternsListCmd.Flags().Bool("skip-cache", false, "bypass the pattern cache and fetch fresh patterns")
}
