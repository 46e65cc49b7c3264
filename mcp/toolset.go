package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/tool"
)

// DefaultConnectTimeout bounds the MCP handshake and the first tool listing.
const DefaultConnectTimeout = 10 * time.Second

// StdioServer describes an MCP server launched as a subprocess.
type StdioServer struct {
	Command string
	Args    []string
	// Env entries are KEY=VALUE and are added to the current environment.
	Env []string
}

// ConnectOption configures a connection.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	timeout       time.Duration
	clientName    string
	clientVersion string
	include       []string
	sideEffects   []string
}

// WithConnectTimeout bounds the handshake and initial tool listing.
func WithConnectTimeout(d time.Duration) ConnectOption {
	return func(c *connectConfig) {
		c.timeout = d
	}
}

// WithClientInfo sets the client name and version sent to the server.
func WithClientInfo(name, version string) ConnectOption {
	return func(c *connectConfig) {
		c.clientName = name
		c.clientVersion = version
	}
}

// WithInclude keeps only the named remote tools.
func WithInclude(names ...string) ConnectOption {
	return func(c *connectConfig) {
		c.include = append(c.include, names...)
	}
}

// WithSideEffectTools marks the named remote tools as requiring approval.
func WithSideEffectTools(names ...string) ConnectOption {
	return func(c *connectConfig) {
		c.sideEffects = append(c.sideEffects, names...)
	}
}

// Toolset is the tool list of a connected MCP server. It is safe for
// concurrent use. The list is cached and can be reloaded with Refresh.
type Toolset struct {
	client *client.Client
	cfg    connectConfig

	mu    sync.RWMutex
	tools []ai.Tool
}

// Connect launches an MCP server over stdio and lists its tools.
func Connect(ctx context.Context, srv StdioServer, opts ...ConnectOption) (*Toolset, error) {
	if srv.Command == "" {
		return nil, errors.New("mcp: stdio server command is empty")
	}
	c, err := client.NewStdioMCPClient(srv.Command, srv.Env, srv.Args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: start %s: %w", srv.Command, err)
	}
	return ConnectClient(ctx, c, opts...)
}

// ConnectSSE connects to an MCP server over SSE and lists its tools.
func ConnectSSE(ctx context.Context, baseURL string, opts ...ConnectOption) (*Toolset, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("mcp: create SSE client: %w", err)
	}
	return ConnectClient(ctx, c, opts...)
}

// ConnectClient initializes an existing MCP client and lists its tools.
// The toolset owns the client and closes it on failure.
func ConnectClient(ctx context.Context, c *client.Client, opts ...ConnectOption) (*Toolset, error) {
	cfg := connectConfig{
		timeout:       DefaultConnectTimeout,
		clientName:    "agentry",
		clientVersion: "1.0.0",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// The transport outlives the handshake, so only the handshake is bounded.
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: start client: %w", err)
	}

	hctx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	_, err := c.Initialize(hctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    cfg.clientName,
				Version: cfg.clientVersion,
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: initialize: %w", err)
	}

	ts := &Toolset{client: c, cfg: cfg}
	if err := ts.Refresh(hctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}
	return ts, nil
}

// Close closes the connection to the MCP server.
func (t *Toolset) Close() error {
	return t.client.Close()
}

// Refresh reloads the tool list from the server.
func (t *Toolset) Refresh(ctx context.Context) error {
	result, err := t.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := make([]ai.Tool, 0, len(result.Tools))
	for _, rt := range result.Tools {
		if len(t.cfg.include) > 0 && !slices.Contains(t.cfg.include, rt.Name) {
			continue
		}
		tools = append(tools, FromMCPTool(rt))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tools = tools
	return nil
}

// Tools returns the remote tool definitions in server order.
func (t *Toolset) Tools() []ai.Tool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.tools)
}

// Names returns the remote tool names in server order.
func (t *Toolset) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.tools))
	for i, rt := range t.tools {
		names[i] = rt.Name
	}
	return names
}

// Len returns the number of remote tools.
func (t *Toolset) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tools)
}

// Call invokes a remote tool. Transport failures and remote errors are
// both returned as error results, never as an error.
func (t *Toolset) Call(ctx context.Context, call ai.ToolCall) ai.ToolResult {
	result, err := t.client.CallTool(ctx, toCallRequest(call))
	if err != nil {
		return call.Failure(fmt.Sprintf("remote tool %s failed: %v", call.Name, err))
	}
	res := call.Result(resultText(result))
	res.IsError = result.IsError
	return res
}

// Specs returns a stateless tool.Spec per remote tool.
func (t *Toolset) Specs() []tool.Spec {
	tools := t.Tools()
	specs := make([]tool.Spec, 0, len(tools))
	for _, rt := range tools {
		var opts []tool.SpecOption
		if slices.Contains(t.cfg.sideEffects, rt.Name) {
			opts = append(opts, tool.WithSideEffects())
		}
		opts = append(opts, tool.WithOutputType("mcp"))
		specs = append(specs, tool.WithHandler(rt.Name, rt.Description, rt.Parameters, t.handler(), opts...))
	}
	return specs
}

// RegisterTo adds every remote tool to registry.
func (t *Toolset) RegisterTo(registry *tool.Registry) error {
	for _, s := range t.Specs() {
		if err := registry.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *Toolset) handler() tool.Handler {
	return func(ctx context.Context, call ai.ToolCall) (string, error) {
		res := t.Call(ctx, call)
		if res.IsError {
			return "", tool.NewToolError("%s", res.Content)
		}
		return res.Content, nil
	}
}
