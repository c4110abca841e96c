package config

import "brandconsole/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" env:"BRANDCONSOLE_LOG_LEVEL"`   // debug, info, warn, error
	Format     string          `yaml:"format" env:"BRANDCONSOLE_LOG_FORMAT"` // json, console
	File       string          `yaml:"file" env:"BRANDCONSOLE_LOG_FILE"`     // empty disables logging
	Categories map[string]bool `yaml:"categories,omitempty"`                 // per-category toggles
}

// IsCategoryEnabled reports whether category is switched on. Categories not
// listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	enabled, exists := c.Categories[category]
	return !exists || enabled
}

// Options converts the config into logging.Init options.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}
