package app

import (
	"fmt"

	"simctl-mcp/internal/server"
	"simctl-mcp/internal/simctl"
)

// Services holds the initialized collaborators shared by both modes
type Services struct {
	Simctl simctl.Client
	Server *server.Server
}

// InitializeServices creates the simulator client and the MCP server around it
func InitializeServices(cfg *Config) (*Services, error) {
	client := simctl.NewExecClient(simctl.NewExecRunner(cfg.Settings.Simctl.XcrunPath))

	srv, err := server.NewSimctl(cfg.Version, client)
	if err != nil {
		return nil, fmt.Errorf("failed to build MCP server: %w", err)
	}

	return &Services{
		Simctl: client,
		Server: srv,
	}, nil
}
