package config

import "time"

// DefaultPort is used when neither flag, environment nor file sets a port.
const DefaultPort = 8081

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	keepAlive := false
	return Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			SSEPath:           "/sse",
			MessagePath:       "/messages",
			KeepAlive:         &keepAlive,
			KeepAliveInterval: 30 * time.Second,
		},
		Simctl: SimctlConfig{
			XcrunPath: "xcrun",
		},
		LogLevel: "info",
	}
}
