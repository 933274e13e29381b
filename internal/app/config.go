package app

import (
	"io"

	"simctl-mcp/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Transport selection
	Stdio bool

	// Debug settings
	Debug bool

	// Listener overrides from the command line. Zero values defer to the
	// environment and configuration files.
	Port int
	Host string

	// ConfigPath selects a single configuration directory instead of the
	// layered user/project lookup.
	ConfigPath string

	Version string

	// Environ is consulted for overrides; nil reads the process environment.
	Environ map[string]string

	// Streams used in stdio mode; nil means os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer

	// Settings is filled during bootstrap.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(stdio, debug bool, port int, host, configPath, version string) *Config {
	return &Config{
		Stdio:      stdio,
		Debug:      debug,
		Port:       port,
		Host:       host,
		ConfigPath: configPath,
		Version:    version,
	}
}
