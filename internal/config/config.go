// Package config provides configuration management for ksynth.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/edu-ap/knowledge-synthesizer/internal/llm"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/ksynth"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/ksynth"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey   = errors.New("invalid configuration key")
	ErrInvalidModel = errors.New("invalid model name")
	ErrNoEditor     = errors.New("$EDITOR environment variable not set")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full ksynth configuration.
type Config struct {
	Default  DefaultConfig  `mapstructure:"default" validate:"required"`
	Output   OutputConfig   `mapstructure:"output" validate:"required"`
	Patterns PatternsConfig `mapstructure:"patterns" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	API      APIConfig      `mapstructure:"api"`
}

// DefaultConfig holds default values for new runs.
type DefaultConfig struct {
	Model string `mapstructure:"model" validate:"required,oneof=gpt-4 gpt-4-turbo-preview gpt-3.5-turbo"`
	Glob  string `mapstructure:"glob" validate:"required"`
}

// OutputConfig holds output layout configuration.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Suffix string `mapstructure:"suffix"`
}

// PatternsConfig holds pattern source configuration.
type PatternsConfig struct {
	ListingURL string        `mapstructure:"listing_url" validate:"required,url"`
	RawBaseURL string        `mapstructure:"raw_base_url" validate:"required,url"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Local      string        `mapstructure:"local"`
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	Cache string `mapstructure:"cache" validate:"required"`
	Logs  string `mapstructure:"logs" validate:"required"`
}

// APIConfig holds completion API configuration.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Key            string        `mapstructure:"key"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit      int           `mapstructure:"rate_limit" validate:"gt=0"`
	Concurrency    int           `mapstructure:"concurrency" validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0"`
	Temperature    float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding
	v.SetEnvPrefix("KSYNTH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific env vars to config keys.
	// We intentionally ignore errors here as BindEnv only fails if called with zero arguments.
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("api.key", "OPENAI_API_KEY")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("default.model", "KSYNTH_MODEL")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.cache", "KSYNTH_CACHE_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("patterns.ttl", "KSYNTH_PATTERNS_TTL")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	// Set defaults before any config reading
	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("default.model", "gpt-4")
	l.v.SetDefault("default.glob", "*.md")
	l.v.SetDefault("output.dir", "synthesis")
	l.v.SetDefault("output.suffix", "_synthesis")
	l.v.SetDefault("patterns.listing_url", "https://api.github.com/repos/danielmiessler/fabric/contents/patterns")
	l.v.SetDefault("patterns.raw_base_url", "https://raw.githubusercontent.com/danielmiessler/fabric/main/patterns")
	l.v.SetDefault("patterns.ttl", "24h")
	l.v.SetDefault("patterns.local", "~/.config/ksynth/patterns.yaml")
	l.v.SetDefault("storage.cache", "~/.local/share/ksynth/patterns.json")
	l.v.SetDefault("storage.logs", "~/.local/share/ksynth/logs")
	l.v.SetDefault("api.base_url", "https://api.openai.com/v1")
	l.v.SetDefault("api.timeout", "60s")
	l.v.SetDefault("api.rate_limit", 60)
	l.v.SetDefault("api.concurrency", 4)
	l.v.SetDefault("api.max_retries", 3)
	l.v.SetDefault("api.temperature", 0.7)
	l.v.SetDefault("api.initial_backoff", "1s")
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand paths
	cfg.Storage.Cache = l.expandPath(cfg.Storage.Cache)
	cfg.Storage.Logs = l.expandPath(cfg.Storage.Logs)
	cfg.Patterns.Local = l.expandPath(cfg.Patterns.Local)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	// Validate model name if setting default.model
	if key == "default.model" && value != "" {
		if !llm.IsValidModel(value) {
			return fmt.Errorf("%w: %s (valid: %s)", ErrInvalidModel, value,
				strings.Join(llm.ValidModelNames(), ", "))
		}
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if validKeys[key] {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
