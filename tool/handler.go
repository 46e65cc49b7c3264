package tool

import (
	"context"

	ai "github.com/spetersoncode/agentry"
)

// Handler executes a stateless tool call and returns the result content.
// The context supports cancellation and timeout.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// BoundHandler executes a context-bound tool call. deps is the run's shared
// dependency value, passed by reference.
type BoundHandler func(ctx context.Context, deps any, call ai.ToolCall) (string, error)

// TypedHandler executes a tool call with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)

// DepsHandler executes a tool call with typed deps and arguments.
type DepsHandler[D, T any] func(ctx context.Context, deps D, args T) (string, error)
