package app

import (
	"context"
	"fmt"
	"os"

	"simctl-mcp/internal/config"
	"simctl-mcp/pkg/logging"
)

// Application is the main application structure that bootstraps and runs simctl-mcp
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	// stdout is the protocol channel in stdio mode, so logs always go to stderr.
	logging.InitForCLI(logLevel(cfg.Debug, ""), os.Stderr)

	if cfg.Environ == nil {
		cfg.Environ = config.Environ()
	}

	settings, err := loadSettings(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, err
	}
	cfg.Settings = &settings

	if !cfg.Debug && settings.LogLevel != "" {
		logging.InitForCLI(logLevel(false, settings.LogLevel), os.Stderr)
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

func loadSettings(cfg *Config) (config.Config, error) {
	var (
		settings config.Config
		err      error
	)
	if cfg.ConfigPath != "" {
		settings, err = config.LoadConfigFromDir(cfg.ConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		settings, err = config.LoadConfig()
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	settings, err = config.ApplyEnv(settings, cfg.Environ)
	if err != nil {
		return config.Config{}, err
	}

	settings.Server.Port = config.ResolvePort(cfg.Port, cfg.Environ, settings.Server.Port)
	if cfg.Host != "" {
		settings.Server.Host = cfg.Host
	}
	return settings, nil
}

func logLevel(debug bool, configured string) logging.LogLevel {
	if debug {
		return logging.LevelDebug
	}
	level, ok := logging.ParseLevel(configured)
	if !ok {
		logging.Warn("Bootstrap", "Unknown log level %q, using info", configured)
	}
	return level
}

// Run executes the application in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	if a.config.Stdio {
		return runStdioMode(ctx, a.config, a.services)
	}
	return runHTTPMode(ctx, a.config, a.services)
}

// Settings returns the resolved configuration.
func (a *Application) Settings() config.Config {
	return *a.config.Settings
}
