package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.Selection.MaxItems)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, 12, cfg.PerPage())
	assert.Equal(t, 30.0, cfg.Commission.HighValueThreshold)
	assert.Equal(t, BackendSQLite, cfg.Backend.Kind)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brandconsole.yaml")
	content := `
selection:
  max_items: 6
search:
  debounce: 250ms
  per_page: 200
backend:
  kind: http
  base_url: https://api.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Selection.MaxItems)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, 50, cfg.PerPage(), "per_page is clamped")
	assert.Equal(t, BackendHTTP, cfg.Backend.Kind)
	assert.Equal(t, "15s", cfg.Backend.Timeout, "unset keys keep defaults")
	assert.Equal(t, 30.0, cfg.Commission.HighValueThreshold)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selection: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "brandconsole.yaml")
	cfg := DefaultConfig()
	cfg.Commission.HighValueThreshold = 25
	cfg.Logging.Categories = map[string]bool{"query": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.False(t, loaded.Logging.IsCategoryEnabled("query"))
	assert.True(t, loaded.Logging.IsCategoryEnabled("store"))
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Debounce = "soon"
	cfg.Backend.Timeout = "-1s"
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max items", func(c *Config) { c.Selection.MaxItems = 0 }},
		{"negative threshold", func(c *Config) { c.Commission.HighValueThreshold = -1 }},
		{"unknown backend", func(c *Config) { c.Backend.Kind = "grpc" }},
		{"http without url", func(c *Config) { c.Backend.Kind = BackendHTTP }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.Logging.Options()
	assert.Equal(t, "console.log", opts.File)
	assert.Equal(t, "info", opts.Level)
}
