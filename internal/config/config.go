// Package config loads the brand console configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brandconsole/internal/catalog"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "brandconsole.yaml"

// Backend kinds.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Config holds all brand console configuration.
type Config struct {
	Selection  SelectionConfig  `yaml:"selection"`
	Search     SearchConfig     `yaml:"search"`
	Commission CommissionConfig `yaml:"commission"`
	Backend    BackendConfig    `yaml:"backend"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
	UI         UIConfig         `yaml:"ui"`
}

// SelectionConfig configures the campaign item pickers.
type SelectionConfig struct {
	MaxItems int `yaml:"max_items" env:"BRANDCONSOLE_MAX_ITEMS"` // products + categories per campaign
}

// SearchConfig configures catalog queries.
type SearchConfig struct {
	Debounce string `yaml:"debounce" env:"BRANDCONSOLE_SEARCH_DEBOUNCE"`
	PerPage  int    `yaml:"per_page" env:"BRANDCONSOLE_SEARCH_PER_PAGE"`
}

// CommissionConfig configures the save confirmation.
type CommissionConfig struct {
	HighValueThreshold float64 `yaml:"high_value_threshold" env:"BRANDCONSOLE_HIGH_VALUE_THRESHOLD"` // percent
}

// BackendConfig selects where the catalog and campaigns live.
type BackendConfig struct {
	Kind              string  `yaml:"kind" env:"BRANDCONSOLE_BACKEND"` // sqlite, http
	BaseURL           string  `yaml:"base_url" env:"BRANDCONSOLE_BASE_URL"`
	Token             string  `yaml:"token,omitempty" env:"BRANDCONSOLE_TOKEN"`
	Timeout           string  `yaml:"timeout" env:"BRANDCONSOLE_TIMEOUT"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"BRANDCONSOLE_RPS"`
	Burst             int     `yaml:"burst" env:"BRANDCONSOLE_BURST"`
}

// StoreConfig configures the local SQLite backend.
type StoreConfig struct {
	Path string `yaml:"path" env:"BRANDCONSOLE_STORE_PATH"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	DarkMode bool `yaml:"dark_mode" env:"BRANDCONSOLE_DARK_MODE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Selection: SelectionConfig{MaxItems: 10},
		Search: SearchConfig{
			Debounce: "500ms",
			PerPage:  catalog.DefaultPageSize.Default,
		},
		Commission: CommissionConfig{HighValueThreshold: 30},
		Backend: BackendConfig{
			Kind:              BackendSQLite,
			Timeout:           "15s",
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Store: StoreConfig{Path: filepath.Join("data", "console.db")},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "console.log",
		},
		UI: UIConfig{DarkMode: true},
	}
}

// Load reads configuration from path. A missing file yields the defaults;
// environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides sets every field whose BRANDCONSOLE_* variable is
// present. Unset variables leave the loaded value alone.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DebounceDuration returns the search debounce window.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Search.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// BackendTimeout returns the per-request timeout of the HTTP backend.
func (c *Config) BackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// PerPage returns the product page size, clamped to the catalog limits.
func (c *Config) PerPage() int {
	return catalog.ClampPerPage(c.Search.PerPage, catalog.DefaultPageSize)
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Selection.MaxItems < 1 {
		return fmt.Errorf("selection.max_items must be at least 1, got %d", c.Selection.MaxItems)
	}
	if c.Commission.HighValueThreshold < 0 {
		return fmt.Errorf("commission.high_value_threshold must not be negative, got %v", c.Commission.HighValueThreshold)
	}
	switch c.Backend.Kind {
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case BackendHTTP:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required for the http backend")
		}
	default:
		return fmt.Errorf("invalid backend kind: %q (valid: %s, %s)", c.Backend.Kind, BackendSQLite, BackendHTTP)
	}
	return nil
}
