package app

import (
	"io"
	"os"

	"svcctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath selects a single config file instead of the layered lookup
	ConfigPath string

	// LogLevel overrides logging.level from the config file when set
	LogLevel string

	// Only restricts `run` to these service names; empty starts every enabled service
	Only []string

	// Output receives logs and the event stream
	Output io.Writer

	// Loaded configuration, set by NewApplication
	SvcctlConfig *config.SvcctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel string) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Output:     os.Stderr,
	}
}
