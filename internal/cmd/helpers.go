package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/edu-ap/knowledge-synthesizer/internal/config"
	"github.com/edu-ap/knowledge-synthesizer/internal/keychain"
	"github.com/edu-ap/knowledge-synthesizer/internal/pattern"
	"github.com/edu-ap/knowledge-synthesizer/internal/prompt"
)

// apiKeyAccount is the keychain account name for the completion API key.
const apiKeyAccount = "openai-api-key"

// requireConfig returns the loaded configuration or an error when config
// initialization failed earlier.
func requireConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}

// buildPatternLoader wires the pattern source and cache store from config.
func buildPatternLoader(cfg *config.Config) *pattern.Loader {
	source := pattern.NewSource(pattern.SourceConfig{
		ListingURL: cfg.Patterns.ListingURL,
		RawBaseURL: cfg.Patterns.RawBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
	})
	store := pattern.NewStore(cfg.Storage.Cache)

	return pattern.NewLoader(source, store, pattern.LoaderConfig{TTL: cfg.Patterns.TTL})
}

// resolveAPIKey finds the completion API key: config (including the
// OPENAI_API_KEY env binding) first, then the OS keychain, then an
// interactive prompt. A key entered interactively is offered for keychain
// storage.
func resolveAPIKey(cfg *config.Config, prompter prompt.Prompter) (string, error) {
	if cfg.API.Key != "" {
		return cfg.API.Key, nil
	}

	kc := keychain.New()
	if key, err := kc.Get(apiKeyAccount); err == nil && key != "" {
		return key, nil
	}

	key, err := prompter.Secret("Enter your OpenAI API key")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("no API key provided (set OPENAI_API_KEY or run 'ksynth auth set')")
	}

	save, err := prompter.Confirm("Store API key?", "Save the key to the system keychain for future runs.")
	if err == nil && save {
		if err := kc.Set(apiKeyAccount, key); err != nil {
			fmt.Printf("Warning: failed to store API key: %v\n", err)
		}
	}

	return key, nil
}
