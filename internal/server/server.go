package server

import (
	"context"
	"fmt"

	"simctl-mcp/internal/devicetools"
	"simctl-mcp/internal/simctl"
	"simctl-mcp/internal/tools"
	"simctl-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Name is the server identity announced during initialize.
const Name = "simctl-mcp-server"

// Server owns the protocol engine and the tool dispatcher behind it. Both
// transports share one Server.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
}

// New builds a server exposing every descriptor in catalog.
func New(version string, catalog *tools.Catalog) *Server {
	dispatcher := tools.NewDispatcher(catalog)

	mcpServer := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithHooks(newHooks()),
	)
	mcpServer.AddTools(dispatcher.ServerTools()...)

	logging.Debug("Server", "Registered %d tools", catalog.Len())

	return &Server{
		mcp:        mcpServer,
		dispatcher: dispatcher,
	}
}

// NewSimctl builds a server with the full simulator operation table bound to client.
func NewSimctl(version string, client simctl.Client) (*Server, error) {
	catalog := tools.NewCatalog()
	if err := devicetools.Register(catalog, client); err != nil {
		return nil, fmt.Errorf("failed to register simulator tools: %w", err)
	}
	return New(version, catalog), nil
}

// MCP returns the underlying protocol engine for transports.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Dispatcher returns the dispatcher serving tools/call.
func (s *Server) Dispatcher() *tools.Dispatcher {
	return s.dispatcher
}

func newHooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logging.Debug("Server", "Session %s registered", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logging.Debug("Server", "Session %s unregistered", session.SessionID())
	})
	hooks.AddAfterInitialize(func(ctx context.Context, id any, message *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logging.Info("Server", "Client %s %s initialized (protocol %s)",
			message.Params.ClientInfo.Name, message.Params.ClientInfo.Version, result.ProtocolVersion)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logging.Warn("Server", "Request %v (%s) failed: %v", id, method, err)
	})
	return hooks
}
