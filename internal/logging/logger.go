// Package logging provides categorized zap loggers for the brand console.
// Each subsystem logs through its own named child of the root logger, and
// categories can be switched off individually from configuration.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryQuery     Category = "query"     // Catalog queries, debounce, stale responses
	CategorySelection Category = "selection" // Draft add/remove, cap rejections
	CategoryEditor    Category = "editor"    // Commit/cancel, confirmation gate, saves
	CategoryStore     Category = "store"     // SQLite backend
	CategoryClient    Category = "client"    // HTTP backend
	CategoryUI        Category = "ui"        // Terminal UI events
)

// Options mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports
type Options struct {
	Level      string
	Format     string // json, console
	File       string // empty disables output
	Categories map[string]bool
}

var (
	mu         sync.RWMutex
	root       = zap.NewNop()
	categories map[string]bool
)

// Init builds the root logger from opts and installs it. With no output file
// the root logger discards everything, which keeps the terminal UI clean.
func Init(opts Options) (*zap.Logger, error) {
	if opts.File == "" {
		Set(zap.NewNop(), opts.Categories)
		return Root(), nil
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{opts.File}
	cfg.ErrorOutputPaths = []string{opts.File}
	cfg.Sampling = nil
	if opts.Format == "console" || opts.Format == "text" {
		cfg.Encoding = "console"
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	Set(logger, opts.Categories)
	return logger, nil
}

// ParseLevel maps a config level string onto a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Set installs logger as the root logger. A nil category map enables every
// category.
func Set(logger *zap.Logger, cats map[string]bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = logger
	categories = cats
}

// Root returns the root logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Get returns the logger for a category.
func Get(cat Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if enabled, ok := categories[string(cat)]; ok && !enabled {
		return zap.NewNop()
	}
	return root.Named(string(cat))
}

// Sync flushes the root logger.
func Sync() error {
	return Root().Sync()
}
