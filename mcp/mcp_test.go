package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name string `json:"name" jsonschema:"description=Who to greet"`
}

type lookupArgs struct {
	Key string `json:"key"`
}

type prefs struct {
	Greeting string
}

func testRegistry() *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func("greet", "Greet someone", func(ctx context.Context, args greetArgs) (string, error) {
			return fmt.Sprintf("Hello, %s!", args.Name), nil
		}),
		tool.Func("lookup", "Look up a key", func(ctx context.Context, args lookupArgs) (string, error) {
			return "", tool.NewToolError("key %q not found", args.Key)
		}),
		tool.WithDeps("salute", "Greet using the configured greeting", func(ctx context.Context, p *prefs, args greetArgs) (string, error) {
			return p.Greeting + ", " + args.Name, nil
		}),
	)
}

func connectTo(t *testing.T, registry *tool.Registry, serverOpts []ServerOption, opts ...ConnectOption) *Toolset {
	t.Helper()
	c, err := client.NewInProcessClient(NewServer(registry, serverOpts...))
	require.NoError(t, err)

	ts, err := ConnectClient(context.Background(), c, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ts.Close() })
	return ts
}

func TestToMCPTool(t *testing.T) {
	t.Run("passes the schema through", func(t *testing.T) {
		schema := json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}}}`)
		mt := ToMCPTool(ai.Tool{Name: "greet", Description: "Greet someone", Parameters: schema})

		assert.Equal(t, "greet", mt.Name)
		assert.Equal(t, "Greet someone", mt.Description)
		assert.Equal(t, schema, mt.RawInputSchema)
	})

	t.Run("empty parameters become an empty object schema", func(t *testing.T) {
		mt := ToMCPTool(ai.Tool{Name: "ping", Description: "Ping"})
		assert.JSONEq(t, `{"type":"object","properties":{}}`, string(mt.RawInputSchema))
	})
}

func TestFromMCPTool(t *testing.T) {
	t.Run("raw schema", func(t *testing.T) {
		mt := mcp.NewToolWithRawSchema("weather", "Get weather", json.RawMessage(`{"type":"object"}`))
		at := FromMCPTool(mt)

		assert.Equal(t, "weather", at.Name)
		assert.Equal(t, "Get weather", at.Description)
		assert.JSONEq(t, `{"type":"object"}`, string(at.Parameters))
	})

	t.Run("structured schema", func(t *testing.T) {
		mt := mcp.NewTool("search",
			mcp.WithDescription("Search the web"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		)
		at := FromMCPTool(mt)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(at.Parameters, &schema))
		assert.Equal(t, "object", schema["type"])
		assert.Contains(t, schema["properties"], "query")
		assert.Equal(t, []any{"query"}, schema["required"])
	})
}

func TestToCallRequest(t *testing.T) {
	req := toCallRequest(ai.ToolCall{ID: "c1", Name: "greet", Arguments: `{"name":"Ada"}`})
	assert.Equal(t, "greet", req.Params.Name)
	assert.Equal(t, map[string]any{"name": "Ada"}, req.Params.Arguments)

	req = toCallRequest(ai.ToolCall{ID: "c2", Name: "ping"})
	assert.Nil(t, req.Params.Arguments)
}

func TestResultText(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent("line one"),
			mcp.NewTextContent("line two"),
		},
	}
	assert.Equal(t, "line one\nline two", resultText(result))
	assert.Equal(t, "", resultText(nil))
}

func TestToolsetListsServerTools(t *testing.T) {
	ts := connectTo(t, testRegistry(), nil)

	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, []string{"greet", "lookup", "salute"}, ts.Names())

	tools := ts.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "Greet someone", tools[0].Description)
	assert.Contains(t, string(tools[0].Parameters), `"name"`)
}

func TestToolsetCall(t *testing.T) {
	ts := connectTo(t, testRegistry(), []ServerOption{WithDeps(&prefs{Greeting: "Ahoy"})})
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res := ts.Call(ctx, ai.ToolCall{ID: "c1", Name: "greet", Arguments: `{"name":"Ada"}`})
		assert.False(t, res.IsError)
		assert.Equal(t, "c1", res.ToolCallID)
		assert.Equal(t, "Hello, Ada!", res.Content)
	})

	t.Run("remote tool error", func(t *testing.T) {
		res := ts.Call(ctx, ai.ToolCall{ID: "c2", Name: "lookup", Arguments: `{"key":"x"}`})
		assert.True(t, res.IsError)
		assert.Equal(t, `key "x" not found`, res.Content)
	})

	t.Run("arguments are checked by the server", func(t *testing.T) {
		res := ts.Call(ctx, ai.ToolCall{ID: "c3", Name: "greet", Arguments: `{"name":7}`})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "invalid arguments for greet")
	})

	t.Run("server deps reach bound tools", func(t *testing.T) {
		res := ts.Call(ctx, ai.ToolCall{ID: "c4", Name: "salute", Arguments: `{"name":"Ada"}`})
		assert.False(t, res.IsError)
		assert.Equal(t, "Ahoy, Ada", res.Content)
	})

	t.Run("unknown remote tool", func(t *testing.T) {
		res := ts.Call(ctx, ai.ToolCall{ID: "c5", Name: "missing"})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "remote tool missing failed")
	})
}

func TestServerWithoutDepsFailsBoundTool(t *testing.T) {
	ts := connectTo(t, testRegistry(), nil)

	res := ts.Call(context.Background(), ai.ToolCall{ID: "c1", Name: "salute", Arguments: `{"name":"Ada"}`})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "salute")
}

func TestToolsetRegisterTo(t *testing.T) {
	ts := connectTo(t, testRegistry(), nil, WithInclude("greet", "lookup"), WithSideEffectTools("lookup"))

	local := tool.NewRegistry()
	require.NoError(t, ts.RegisterTo(local))
	assert.Equal(t, []string{"greet", "lookup"}, local.Names())

	spec, err := local.Resolve("lookup")
	require.NoError(t, err)
	assert.True(t, spec.SideEffects)
	assert.Equal(t, "mcp", spec.OutputType)

	ctx := context.Background()

	res, err := local.Execute(ctx, ai.ToolCall{ID: "c1", Name: "greet", Arguments: `{"name":"Grace"}`}, nil)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Hello, Grace!", res.Content)

	// Remote failures look exactly like local recoverable tool errors.
	res, err = local.Execute(ctx, ai.ToolCall{ID: "c2", Name: "lookup", Arguments: `{"key":"y"}`}, nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, `key "y" not found`, res.Content)

	t.Run("duplicate registration", func(t *testing.T) {
		assert.Error(t, ts.RegisterTo(local))
	})
}

func TestToolsetRefresh(t *testing.T) {
	ts := connectTo(t, testRegistry(), nil, WithInclude("greet"))
	assert.Equal(t, []string{"greet"}, ts.Names())

	require.NoError(t, ts.Refresh(context.Background()))
	assert.Equal(t, 1, ts.Len())
}

func TestConnectRejectsEmptyCommand(t *testing.T) {
	_, err := Connect(context.Background(), StdioServer{})
	assert.Error(t, err)
}
