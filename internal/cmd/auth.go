package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edu-ap/knowledge-synthesizer/internal/keychain"
	"github.com/edu-ap/knowledge-synthesizer/internal/prompt"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the completion API key",
	Long: `Manage the OpenAI API key used for synthesis.

The key is stored in the system keychain. The OPENAI_API_KEY environment
variable, when set, takes precedence over the stored key.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the API key in the system keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompter := prompt.New()

		key, err := prompter.Secret("Enter your OpenAI API key")
		if err != nil {
			return err
		}
		if key == "" {
			return errors.New("no API key provided")
		}

		if err := keychain.New().Set(apiKeyAccount, key); err != nil {
			return fmt.Errorf("store API key: %w", err)
		}

		fmt.Println("API key stored")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig(cmd.Context())
		if err != nil {
			return err
		}

		if cfg.API.Key != "" {
			fmt.Println("API key: configured via environment or config file")
			return nil
		}

		if _, err := keychain.New().Get(apiKeyAccount); err == nil {
			fmt.Println("API key: stored in system keychain")
			return nil
		}

		fmt.Println("API key: not configured (set OPENAI_API_KEY or run 'ksynth auth set')")
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the API key from the system keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keychain.New().Delete(apiKeyAccount); err != nil {
			return fmt.Errorf("remove API key: %w", err)
		}
		fmt.Println("API key removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authClearCmd)
}
