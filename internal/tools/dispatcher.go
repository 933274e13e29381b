package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"simctl-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Dispatcher resolves tool calls against a Catalog and always answers with
// a well-formed result envelope.
type Dispatcher struct {
	catalog *Catalog
}

// NewDispatcher creates a dispatcher over catalog.
func NewDispatcher(catalog *Catalog) *Dispatcher {
	return &Dispatcher{catalog: catalog}
}

// Catalog returns the catalog the dispatcher serves.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Dispatch validates raw against the named operation's parameters, runs its
// handler and wraps the outcome. It never returns nil and never panics on
// behalf of a handler.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw any) *mcp.CallToolResult {
	desc, ok := d.catalog.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w %q", ErrUnknownTool, name)
		logging.Warn("Dispatcher", "Rejected call: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", strings.ReplaceAll(name, "_", " "), err))
	}

	start := time.Now()
	outcome := d.run(ctx, desc, raw)
	if outcome.Failed() {
		logging.Error("Dispatcher", outcome.Err(), "Failed to %s", desc.failurePhrase())
	} else {
		logging.Debug("Dispatcher", "Tool %s completed in %s", desc.Name, time.Since(start).Round(time.Millisecond))
	}

	return Envelope(desc, outcome)
}

func (d *Dispatcher) run(ctx context.Context, desc Descriptor, raw any) Outcome {
	args, err := desc.Validate(raw)
	if err != nil {
		return Failure(err)
	}
	return invoke(ctx, desc.Handler, args)
}

// invoke is the single place where a handler's error or panic is turned into
// a failure outcome.
func invoke(ctx context.Context, h Handler, args Args) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure(fmt.Errorf("panic: %v", r))
		}
	}()

	content, err := h(ctx, args)
	if err != nil {
		return Failure(err)
	}
	return Success(content...)
}

// Envelope maps an outcome to the wire-level result for desc.
func Envelope(desc Descriptor, outcome Outcome) *mcp.CallToolResult {
	if outcome.Failed() {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", desc.failurePhrase(), outcome.Err()))
	}
	return &mcp.CallToolResult{Content: outcome.Content()}
}

// Handler adapts the named operation to mcp-go's handler signature. The
// returned function never reports a Go error; failures travel in the result.
func (d *Dispatcher) Handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Dispatch(ctx, name, request.GetRawArguments()), nil
	}
}

// ServerTools returns every catalog entry paired with its dispatching handler,
// ready for server.MCPServer.AddTools.
func (d *Dispatcher) ServerTools() []server.ServerTool {
	descriptors := d.catalog.Descriptors()
	out := make([]server.ServerTool, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, server.ServerTool{
			Tool:    desc.Tool(),
			Handler: d.Handler(desc.Name),
		})
	}
	return out
}
