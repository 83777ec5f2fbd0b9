package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"svcctl/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/svcctl"
	projectConfigDir = ".svcctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the svcctl configuration by layering default, user, and project settings.
func LoadConfig() (SvcctlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = overlayFile(config, userConfigPath); err != nil {
		return SvcctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = overlayFile(config, projectConfigPath); err != nil {
		return SvcctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if err := config.Validate(); err != nil {
		return SvcctlConfig{}, err
	}
	return config, nil
}

// LoadConfigFromPath layers a single file over the defaults. The file must exist.
func LoadConfigFromPath(path string) (SvcctlConfig, error) {
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return SvcctlConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	config := mergeConfigs(GetDefaultConfig(), overlay)
	if err := config.Validate(); err != nil {
		return SvcctlConfig{}, err
	}
	return config, nil
}

// overlayFile merges the file at path into base when it exists.
func overlayFile(base SvcctlConfig, path string) (SvcctlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	logging.Debug("Config", "Loaded configuration layer %s", path)
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a SvcctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (SvcctlConfig, error) {
	var config SvcctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return SvcctlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return SvcctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay SvcctlConfig) SvcctlConfig {
	merged := base

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}

	if overlay.Container.ReadyTimeout != 0 {
		merged.Container.ReadyTimeout = overlay.Container.ReadyTimeout
	}
	if overlay.Container.StopTimeout != 0 {
		merged.Container.StopTimeout = overlay.Container.StopTimeout
	}
	if overlay.Container.EventBuffer != 0 {
		merged.Container.EventBuffer = overlay.Container.EventBuffer
	}

	// Services are replaced by name, new names are added
	byName := make(map[string]ServiceDefinition)
	for _, svc := range base.Services {
		byName[svc.Name] = svc
	}
	for _, svc := range overlay.Services {
		byName[svc.Name] = svc
	}
	merged.Services = make([]ServiceDefinition, 0, len(byName))
	for _, svc := range byName {
		merged.Services = append(merged.Services, svc)
	}
	sort.Slice(merged.Services, func(i, j int) bool {
		return merged.Services[i].Name < merged.Services[j].Name
	})

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Marshal renders the configuration as YAML
func Marshal(config SvcctlConfig) ([]byte, error) {
	return yaml.Marshal(&config)
}
