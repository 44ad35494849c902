// Package config provides configuration types and defaults for langue.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/langue/internal/flags"
	"github.com/zjrosen/langue/internal/log"
)

// Config holds all configuration options for langue.
type Config struct {
	LanguagesDir string          `mapstructure:"languages_dir"` // user definitions; see paths.ResolveLanguagesDir
	Strategy     string          `mapstructure:"strategy"`      // "scanner" (default) or "legacy"
	Format       string          `mapstructure:"format"`        // "html" (default), "ansi" or "tokens"
	Remote       RemoteConfig    `mapstructure:"remote"`
	Watch        WatchConfig     `mapstructure:"watch"`
	Flags        map[string]bool `mapstructure:"flags"`
}

// RemoteConfig controls fetching definitions over HTTP.
type RemoteConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WatchConfig holds options for the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Strategy: "scanner",
		Format:   "html",
		Remote: RemoteConfig{
			Enabled: false,
			BaseURL: "https://raw.githubusercontent.com/wiktor-wiki/languages/master",
			Timeout: 10 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Flags: map[string]bool{
			flags.FlagStrictOverlap: true,
		},
	}
}

// Validate checks the whole configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(cfg Config) error {
	if err := ValidateStrategy(cfg.Strategy); err != nil {
		return err
	}
	if err := ValidateFormat(cfg.Format); err != nil {
		return err
	}
	if err := ValidateRemote(cfg.Remote); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return nil
}

// ValidateStrategy checks the tokenizer strategy name.
func ValidateStrategy(strategy string) error {
	switch strategy {
	case "", "scanner", "legacy":
		return nil
	}
	return fmt.Errorf("strategy must be \"scanner\" or \"legacy\", got %q", strategy)
}

// ValidateFormat checks the output format name.
func ValidateFormat(format string) error {
	switch format {
	case "", "html", "ansi", "tokens":
		return nil
	}
	return fmt.Errorf("format must be \"html\", \"ansi\", or \"tokens\", got %q", format)
}

// ValidateRemote checks remote fetching options. The base URL is only
// required when fetching is enabled.
func ValidateRemote(remote RemoteConfig) error {
	if remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative, got %s", remote.Timeout)
	}
	if !remote.Enabled {
		return nil
	}
	if remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required when remote.enabled is true")
	}
	u, err := url.Parse(remote.BaseURL)
	if err != nil {
		return fmt.Errorf("remote.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote.base_url must be an http or https URL, got %q", remote.BaseURL)
	}
	return nil
}

// DefaultConfigTemplate returns the default config file content with comments.
func DefaultConfigTemplate() string {
	return `# Langue Configuration

# Directory holding your own language definitions (<name>.json or <name>.yaml).
# Default: ./.langue/languages when present, else ~/.config/langue/languages
# languages_dir: ~/definitions

# Tokenizer: "scanner" (default) or "legacy"
#   scanner - leftmost-first rule scan, never overlapping
#   legacy  - every category matched independently, then resolved by priority
strategy: scanner

# Output format: "html" (default), "ansi" or "tokens"
format: html

# Fetch definitions that are not found locally from a remote collection
remote:
  enabled: false
  base_url: https://raw.githubusercontent.com/wiktor-wiki/languages/master
  timeout: 10s

# watch command settings
watch:
  debounce: 200ms  # quiet period before re-rendering after a change

# Feature flags
flags:
  # Legacy strategy only. When true a token that partially overlaps a
  # higher-priority token is dropped. Set to false to keep it and get the
  # historical overlapping output.
  strict-overlap: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
