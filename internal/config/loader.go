package config

import (
	"fmt"
	"os"
	"path/filepath"

	"simctl-mcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/simctl-mcp"
	projectConfigDir = ".simctl-mcp"
	configFileName   = "config.yaml"
)

// LoadConfig layers the defaults, the user file and the project file.
func LoadConfig() (Config, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional.
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = overlayFile(config, userConfigPath); err != nil {
		return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = overlayFile(config, projectConfigPath); err != nil {
		return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	return config, nil
}

// LoadConfigFromDir layers a single directory's config.yaml over the
// defaults. User and project files are not consulted.
func LoadConfigFromDir(dir string) (Config, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Config{}, fmt.Errorf("config directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("config path %s is not a directory", dir)
	}

	path := filepath.Join(dir, configFileName)
	config, err := overlayFile(GetDefaultConfig(), path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return config, nil
}

// overlayFile merges the file at path into base. A missing file leaves base unchanged.
func overlayFile(base Config, path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	logging.Debug("Config", "Loaded configuration from %s", path)
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

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// overlay leave base untouched.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}
	if overlay.Server.SSEPath != "" {
		merged.Server.SSEPath = overlay.Server.SSEPath
	}
	if overlay.Server.MessagePath != "" {
		merged.Server.MessagePath = overlay.Server.MessagePath
	}
	if overlay.Server.BaseURL != "" {
		merged.Server.BaseURL = overlay.Server.BaseURL
	}
	// Only an explicit keepAlive in the overlay changes the setting.
	if overlay.Server.KeepAlive != nil {
		v := *overlay.Server.KeepAlive
		merged.Server.KeepAlive = &v
	}
	if overlay.Server.KeepAliveInterval != 0 {
		merged.Server.KeepAliveInterval = overlay.Server.KeepAliveInterval
	}

	if overlay.Simctl.XcrunPath != "" {
		merged.Simctl.XcrunPath = overlay.Simctl.XcrunPath
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}

	return merged
}
