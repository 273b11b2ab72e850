// Package mcpserver exposes the adapter's operations as MCP tools.
// Tool handlers decode the call arguments, hand them to the dispatcher,
// and wrap the returned envelope in a single text content block.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	researchbridge "github.com/petal-labs/researchbridge"
)

// Config wires an MCP server around a dispatcher.
type Config struct {
	Adapter *researchbridge.Adapter
	Name    string
	Version string
	Logger  *slog.Logger
}

// NewServer builds an MCP server with the four research tools registered.
func NewServer(cfg Config) (*mcpsdk.Server, error) {
	if cfg.Adapter == nil {
		return nil, errors.New("mcpserver: adapter is required")
	}
	if cfg.Name == "" {
		cfg.Name = "researchbridge"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	for _, decl := range toolDeclarations() {
		server.AddTool(&mcpsdk.Tool{
			Name:        decl.name,
			Description: decl.description,
			InputSchema: decl.schema,
		}, toolHandler(cfg.Adapter, cfg.Logger, decl.name))
	}

	return server, nil
}

// ServeStdio runs the server over stdin/stdout until the context is
// cancelled or the peer disconnects.
func ServeStdio(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

// HTTPHandler serves the MCP protocol over SSE. Every request is handled by
// the same server instance since the adapter holds no per-session state.
func HTTPHandler(server *mcpsdk.Server) http.Handler {
	return mcpsdk.NewSSEHandler(func(*http.Request) *mcpsdk.Server { return server }, nil)
}

// toolHandler bridges one MCP tool to the dispatcher. Arguments that fail to
// decode are still routed through Dispatch so the caller gets the adapter's
// error envelope rather than a protocol-level failure.
func toolHandler(adapter *researchbridge.Adapter, logger *slog.Logger, name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			logger.WarnContext(ctx, "malformed tool arguments", "tool", name, "error", err)
			return nil, fmt.Errorf("mcpserver: decode %s arguments: %w", name, err)
		}

		envelope := adapter.Dispatch(ctx, name, args)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: envelope}},
		}, nil
	}
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
