// Package caller invokes tools on a running simctl-mcp server over its
// event-stream transport. It backs the call and tools commands.
package caller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"simctl-mcp/pkg/logging"
)

// DefaultEndpoint is the stream endpoint of a locally running server.
const DefaultEndpoint = "http://localhost:8081/sse"

// ErrInvalidArgument is returned for --arg values that are not key=value.
var ErrInvalidArgument = errors.New("invalid argument")

// Caller is a short-lived MCP client bound to one server endpoint.
type Caller struct {
	endpoint string
	version  string
}

// New creates a caller for the given stream endpoint.
func New(endpoint, version string) *Caller {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Caller{endpoint: endpoint, version: version}
}

// Endpoint returns the stream endpoint the caller connects to.
func (c *Caller) Endpoint() string {
	return c.endpoint
}

// connect opens the stream and performs the initialize handshake.
func (c *Caller) connect(ctx context.Context) (*client.Client, error) {
	logging.Debug("Caller", "Connecting to %s", c.endpoint)

	sseClient, err := client.NewSSEMCPClient(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE client: %w", err)
	}
	if err := sseClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "simctl-mcp-caller",
		Version: c.version,
	}
	if _, err := sseClient.Initialize(ctx, req); err != nil {
		sseClient.Close()
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return sseClient, nil
}

// ListTools returns the tools the server advertises.
func (c *Caller) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	cl, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	result, err := cl.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes one tool and returns its result envelope. A tool-level
// failure is reported through the envelope, not the error.
func (c *Caller) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	cl, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	logging.Debug("Caller", "Calling tool %s", name)
	result, err := cl.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s: %w", name, err)
	}
	return result, nil
}

// ParseArgs turns key=value pairs into tool arguments. Values are always
// sent as strings, including JSON text such as a push payload.
func ParseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		args[key] = value
	}
	return args, nil
}

// ParseJSONArgs decodes key=<json> pairs into args, for parameters that take
// arrays, numbers or booleans. A value that is not valid JSON is an error.
func ParseJSONArgs(args map[string]any, pairs []string) error {
	for _, pair := range pairs {
		key, value, err := splitPair(pair)
		if err != nil {
			return err
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return fmt.Errorf("%w: %q is not valid JSON: %v", ErrInvalidArgument, key, err)
		}
		args[key] = decoded
	}
	return nil
}

func splitPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: %q must be key=value", ErrInvalidArgument, pair)
	}
	return key, value, nil
}

// ResultText joins the text items of a result, one per line.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	parts := make([]string, 0, len(result.Content))
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
