// Package tools holds the operation catalog and the dispatcher that turns
// MCP tool calls into result envelopes.
//
// A Descriptor declares one operation: its name, a natural-language
// description, an ordered parameter table and a Handler. The same parameter
// table is used twice: Descriptor.Tool renders it as an mcp-go input schema
// for tools/list, and Descriptor.Validate checks incoming arguments before a
// handler ever runs.
//
// The Dispatcher guarantees that every call produces a well-formed
// mcp.CallToolResult. Validation failures, handler errors and handler panics
// are all converted into an IsError envelope whose text has the form
//
//	Failed to <failure phrase>: <error>
//
// so one failing simulator command never takes down a transport or another
// in-flight request.
//
// # Usage
//
//	catalog := tools.NewCatalog()
//	catalog.MustRegister(tools.Descriptor{
//	    Name:        "echo",
//	    Description: "Echo a message",
//	    Params: []tools.Param{
//	        {Name: "msg", Type: tools.ParamString, Required: true, Description: "Message"},
//	    },
//	    Handler: func(ctx context.Context, args tools.Args) ([]mcp.Content, error) {
//	        return tools.Text(args.String("msg")), nil
//	    },
//	})
//
//	dispatcher := tools.NewDispatcher(catalog)
//	result := dispatcher.Dispatch(ctx, "echo", map[string]any{"msg": "hi"})
package tools
