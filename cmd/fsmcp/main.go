// Command fsmcp is an MCP server that exposes read-only filesystem tools
// over stdio.
//
// The tools are sandboxed to a root directory: the first argument, or the
// FSMCP_ROOT environment variable, or the working directory.
//
// Usage:
//
//	go run ./cmd/fsmcp /path/to/project
//
// Configuration for an MCP client:
//
//	{
//	    "mcpServers": {
//	        "agentry-fs": {
//	            "command": "go",
//	            "args": ["run", "./cmd/fsmcp", "."],
//	            "cwd": "/path/to/agentry"
//	        }
//	    }
//	}
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spetersoncode/agentry/mcp"
	"github.com/spetersoncode/agentry/tool"
)

func main() {
	// Stdout carries the protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := os.Getenv("FSMCP_ROOT")
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		logger.Error("invalid root", "root", root, "error", err)
		os.Exit(1)
	}

	registry := tool.NewRegistry().Add(tool.FileTools(tool.WithBasePath(abs))...)
	logger.Info("serving filesystem tools", "root", abs, "tools", registry.Names())

	if err := mcp.ServeStdio(registry,
		mcp.WithName("agentry-fs"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
