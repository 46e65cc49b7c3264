package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	deps    any
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithDeps sets the deps passed to context-bound tools.
func WithDeps(deps any) ServerOption {
	return func(c *serverConfig) {
		c.deps = deps
	}
}

// NewServer creates an MCP server that exposes every tool in registry.
// Calls go through Registry.Invoke, so arguments are checked against each
// tool's schema and tool errors come back as MCP error results.
//
//	mcpServer := mcp.NewServer(registry,
//	    mcp.WithName("file-tools"),
//	    mcp.WithVersion("1.0.0"),
//	)
//	server.ServeStdio(mcpServer)
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "agentry-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)
	for _, spec := range registry.Specs() {
		s.AddTool(ToMCPTool(spec.Tool), invokeHandler(registry, spec, cfg.deps))
	}
	return s
}

// invokeHandler wraps a registered tool as an MCP tool handler.
func invokeHandler(registry *tool.Registry, spec tool.Spec, deps any) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argumentsJSON(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
		}

		call := ai.ToolCall{
			ID:        "mcp-" + uuid.NewString(),
			Name:      spec.Name(),
			Arguments: args,
		}
		result, err := registry.Invoke(ctx, spec, call, deps)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}

// ServeStdio serves registry over stdin/stdout until stdin closes.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(registry, opts...))
}
