package config

import (
	"fmt"

	"ballotqa/internal/logging"

	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, console
	File       string          `yaml:"file"`       // empty logs to stderr
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Unlisted categories are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	enabled, exists := c.Categories[category]
	return !exists || enabled
}

// Validate checks level and format.
func (c *LoggingConfig) Validate() error {
	if c.Level != "" {
		if _, err := zapcore.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("invalid level %q", c.Level)
		}
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid format %q (valid: json, console)", c.Format)
	}
	return nil
}

// ToLogging converts to the logging package's config.
func (c *LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}
