package agentry

import "context"

// TurnKind distinguishes a final answer from a request to invoke tools.
type TurnKind string

const (
	// TurnFinal is a candidate answer that goes to output validation.
	TurnFinal TurnKind = "final"
	// TurnToolCalls requests one or more tool invocations.
	TurnToolCalls TurnKind = "tool_calls"
)

// ModelTurn is one response from a Gateway.
type ModelTurn struct {
	Kind TurnKind `json:"kind"`
	// Content is the final payload. For structured output it holds the JSON document.
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
	// ToolCalls are in the order the model requested them.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// NewFinalTurn creates a final turn carrying the given content.
func NewFinalTurn(content string) *ModelTurn {
	return &ModelTurn{Kind: TurnFinal, Content: content}
}

// NewToolCallsTurn creates a turn requesting the given tool calls.
func NewToolCallsTurn(calls ...ToolCall) *ModelTurn {
	return &ModelTurn{Kind: TurnToolCalls, ToolCalls: calls}
}

// IsFinal reports whether the turn is a final candidate.
// A turn without tool calls is final regardless of Kind.
func (t *ModelTurn) IsFinal() bool {
	return t.Kind == TurnFinal || len(t.ToolCalls) == 0
}

// Gateway is the uniform interface to a chat-completion backend.
// The tool catalog and output schema travel in opts (see WithTools and WithResponseSchema).
type Gateway interface {
	Complete(ctx context.Context, messages []Message, opts ...Option) (*ModelTurn, error)
}

// GatewayFunc adapts an ordinary function to the Gateway interface.
type GatewayFunc func(ctx context.Context, messages []Message, opts ...Option) (*ModelTurn, error)

// Complete calls f.
func (f GatewayFunc) Complete(ctx context.Context, messages []Message, opts ...Option) (*ModelTurn, error) {
	return f(ctx, messages, opts...)
}

// StreamEvent is one item on a streaming completion channel. Text
// deltas arrive first; the last event has Done set and carries the
// assembled turn, or Err when the stream broke.
type StreamEvent struct {
	Delta string
	Done  bool
	Turn  *ModelTurn
	Err   error
}

// StreamingGateway is a Gateway that can also deliver text as it is
// generated. The channel is closed after the Done event.
type StreamingGateway interface {
	Gateway
	CompleteStream(ctx context.Context, messages []Message, opts ...Option) (<-chan StreamEvent, error)
}

// CollectStream drains a stream and returns its final turn.
func CollectStream(events <-chan StreamEvent) (*ModelTurn, error) {
	var turn *ModelTurn
	for ev := range events {
		if ev.Err != nil {
			return nil, ev.Err
		}
		if ev.Done {
			turn = ev.Turn
		}
	}
	if turn == nil {
		return nil, NewPermanentError("stream ended without a final turn", 0, nil)
	}
	return turn, nil
}
