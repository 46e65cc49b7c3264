// Package mcp connects the tool registry to the Model Context Protocol.
//
// It works in both directions:
//
//   - Toolset: connect to an MCP server and use its tools as tool.Specs.
//     A transport failure becomes an error tool-result, exactly like a
//     local recoverable ToolError.
//   - Server: expose a tool.Registry to MCP clients.
//
// # Consuming MCP Servers
//
//	ts, err := mcp.Connect(ctx, mcp.StdioServer{
//	    Command: "npx",
//	    Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", "."},
//	}, mcp.WithConnectTimeout(30*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ts.Close()
//
//	registry := tool.NewRegistry()
//	if err := ts.RegisterTo(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// # Exposing Tools as an MCP Server
//
//	registry := tool.NewRegistry().Add(tool.FileTools(tool.WithBasePath("."))...)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp
