package config

import "time"

// Config is the top-level simctl-mcp configuration.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Simctl   SimctlConfig `yaml:"simctl"`
	LogLevel string       `yaml:"logLevel,omitempty"` // debug, info, warn or error
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Host              string        `yaml:"host,omitempty"`              // Interface to bind (default: all interfaces)
	Port              int           `yaml:"port,omitempty"`              // Listen port (default: 8081)
	SSEPath           string        `yaml:"ssePath,omitempty"`           // Stream endpoint (default: /sse)
	MessagePath       string        `yaml:"messagePath,omitempty"`       // Message endpoint (default: /messages)
	BaseURL           string        `yaml:"baseURL,omitempty"`           // Prefix for the announced message endpoint
	KeepAlive         *bool         `yaml:"keepAlive,omitempty"`         // Send keep-alive comments on open streams
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval,omitempty"` // e.g. "30s"
}

// KeepAliveEnabled reports whether keep-alive comments are configured.
func (s ServerConfig) KeepAliveEnabled() bool {
	return s.KeepAlive != nil && *s.KeepAlive
}

// SimctlConfig configures how simulators are driven.
type SimctlConfig struct {
	XcrunPath string `yaml:"xcrunPath,omitempty"` // Path to xcrun (default: resolved from PATH)
}
