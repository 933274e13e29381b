package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"simctl-mcp/pkg/logging"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds the environment variables that override file settings.
// PORT stays a string so an unparsable value can be ignored instead of
// failing startup.
type envOverrides struct {
	Port      string `env:"PORT"`
	Host      string `env:"SIMCTL_MCP_HOST"`
	XcrunPath string `env:"SIMCTL_MCP_XCRUN"`
	LogLevel  string `env:"SIMCTL_MCP_LOG_LEVEL"`
}

// ApplyEnv layers environment overrides onto cfg. A nil environ reads the
// process environment.
func ApplyEnv(cfg Config, environ map[string]string) (Config, error) {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if port, ok := parsePort(overrides.Port); ok {
		cfg.Server.Port = port
	} else if overrides.Port != "" {
		logging.Warn("Config", "Ignoring invalid PORT value %q", overrides.Port)
	}
	if overrides.Host != "" {
		cfg.Server.Host = overrides.Host
	}
	if overrides.XcrunPath != "" {
		cfg.Simctl.XcrunPath = overrides.XcrunPath
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	return cfg, nil
}

// Environ snapshots the process environment.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

// ResolvePort picks the listen port: a positive flag value wins, then a
// valid PORT entry in environ, then fallback.
func ResolvePort(flagPort int, environ map[string]string, fallback int) int {
	if flagPort > 0 {
		return flagPort
	}
	if port, ok := parsePort(environ["PORT"]); ok {
		return port
	}
	return fallback
}

func parsePort(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}
