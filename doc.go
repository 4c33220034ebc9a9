// Package mcpcore provides a Go implementation of the server side of the
// Model Context Protocol (MCP): a JSON-RPC 2.0 dispatcher with a typed tool
// registry, schema validation of tool arguments, and a strict session
// lifecycle.
//
// # Overview
//
// An MCP server exposes a set of named tools to a peer over a
// newline-delimited JSON-RPC stream, typically the process's stdin and
// stdout. This library covers the request dispatch core: decoding and
// classifying messages, enforcing the initialize handshake, routing
// tools/list and tools/call, validating arguments against each tool's input
// schema, and mapping every failure to the correct JSON-RPC error code.
//
// # Architecture
//
// The library is organized into focused packages:
//
//	pkg/protocol/   - JSON-RPC 2.0 message envelope and error codes
//	pkg/models/     - Protocol data structures (tools, content, lifecycle)
//	pkg/schema/     - Structural schema validation for tool arguments
//	pkg/transport/  - Newline-delimited stream transport
//	pkg/server/     - Read-dispatch-write loop with timeouts and concurrency caps
//	pkg/server/core/  - Protocol state machine and method routing
//	pkg/server/tools/ - Insertion-ordered tool registry
//	pkg/errors/     - Protocol-specific error definitions
//	pkg/logging/    - Structured logging utilities (stderr only)
//	pkg/config/     - YAML server configuration
//	pkg/metrics/    - Prometheus instrumentation
//
// # Server Development
//
// Building a server means creating the core dispatcher, registering tools,
// and running the serve loop over a transport:
//
//	mcpServer := core.NewServer(models.Implementation{
//		Name:    "greeter",
//		Version: "1.0.0",
//	}, logging.NewStdLogger(logging.InfoLevel))
//
//	err := mcpServer.RegisterTool(models.Tool{
//		Name:        "say_hello",
//		Description: "Greets the caller by name",
//		InputSchema: schema.Object(map[string]*schema.Schema{
//			"name": {Type: "string", Description: "Name to greet"},
//		}, "name"),
//	}, func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
//		name, _ := args["name"].(string)
//		return &models.CallToolResult{
//			Content: []models.Content{
//				models.NewTextContent("Hello, " + name + "!"),
//			},
//		}, nil
//	})
//
//	t := transport.NewStreamTransport(os.Stdin, os.Stdout)
//	srv := server.NewServer(mcpServer, t, server.DefaultServerConfig())
//	err = srv.Start()
//
// Registration happens before the session becomes ready; once the peer sends
// notifications/initialized the registry is frozen and handler executions
// read it without locking.
//
// # Session Lifecycle
//
// A session moves through NotConnected, Initializing, Ready and ShuttingDown.
// Requests other than initialize are rejected with "Invalid request" until
// the peer completes the handshake, and with "Server is shutting down" after
// shutdown begins. Lifecycle transitions are owned by the dispatch loop;
// handler code never mutates session state.
//
// # Error Handling
//
// Failures surface as typed protocol errors carrying their wire code:
//
//	if perr, ok := errors.AsProtocolError(err); ok {
//		switch perr.Code {
//		case protocol.ErrCodeMethodNotFound:
//			// Unknown method or tool name
//		case protocol.ErrCodeInvalidParams:
//			// perr.Data lists every schema violation
//		}
//	}
//
// Handler faults (returned errors or panics) never leak detail to the peer:
// the full error is logged and the response carries a generic internal
// error.
//
// # Concurrency
//
// Messages are decoded sequentially in stream order, then dispatched on
// their own goroutines under a configurable concurrency cap. Responses may
// complete out of order; each carries the id of its originating request.
// A per-request timeout bounds stuck handlers without affecting their
// siblings.
//
// The protocol stream carries protocol bytes only. All diagnostics go to
// stderr through pkg/logging; peer-directed log records travel as
// notifications/message notifications, filtered by the peer-set level.
package mcpcore
