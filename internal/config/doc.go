// Package config provides configuration management for simctl-mcp.
//
// Configuration is layered. Later sources override earlier ones:
//
//  1. Built-in defaults (port 8081, /sse and /messages, xcrun from PATH)
//  2. User configuration (~/.config/simctl-mcp/config.yaml)
//  3. Project configuration (./.simctl-mcp/config.yaml)
//  4. Environment variables (PORT, SIMCTL_MCP_HOST, SIMCTL_MCP_XCRUN,
//     SIMCTL_MCP_LOG_LEVEL)
//  5. Command line flags, applied by the caller
//
// When a configuration directory is given explicitly, only its config.yaml
// is layered over the defaults.
//
// # Configuration Structure
//
//	server:
//	  host: 127.0.0.1
//	  port: 8081
//	  ssePath: /sse
//	  messagePath: /messages
//	  baseURL: ""            # prefix for the announced message endpoint
//	  keepAlive: false
//	  keepAliveInterval: 30s
//	simctl:
//	  xcrunPath: xcrun
//	logLevel: info
//
// An unparsable PORT value is ignored with a warning rather than failing
// startup.
package config
