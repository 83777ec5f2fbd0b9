package app

import (
	"context"
	"fmt"
	"os"

	"svcctl/internal/config"
	"svcctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs svcctl
type Application struct {
	config   *Config
	services *Services
}

// LoadConfiguration resolves the svcctl configuration for cfg, either from
// cfg.ConfigPath or from the layered lookup.
func LoadConfiguration(cfg *Config) (config.SvcctlConfig, error) {
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			return config.SvcctlConfig{}, fmt.Errorf("failed to load svcctl configuration from path %s: %w", cfg.ConfigPath, err)
		}
		return loaded, nil
	}

	loaded, err := config.LoadConfig()
	if err != nil {
		return config.SvcctlConfig{}, fmt.Errorf("failed to load svcctl configuration: %w", err)
	}
	return loaded, nil
}

// NewApplication loads configuration, initializes logging and builds the
// container with a factory for every configured service.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	// Log with the flag level until the file has been read
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.InitForCLI(level, cfg.Output)

	svcctlCfg, err := LoadConfiguration(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, err
	}
	cfg.SvcctlConfig = &svcctlCfg

	if cfg.LogLevel == "" && svcctlCfg.Logging.Level != "" {
		// Validate has already checked the level
		level, _ = logging.ParseLevel(svcctlCfg.Logging.Level)
		logging.InitForCLI(level, cfg.Output)
	}

	if cfg.ConfigPath != "" {
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the initialized services
func (a *Application) Services() *Services {
	return a.services
}

// Run starts the selected services and blocks until ctx is done, a signal
// arrives or every started service has terminated. It then shuts everything
// down.
func (a *Application) Run(ctx context.Context) error {
	return run(ctx, a.config, a.services)
}
