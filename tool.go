package agentry

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Tool is the catalog entry a model sees: a name, what it is for, and a
// JSON Schema for its arguments.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolCall is one invocation requested by the model. Arguments is the raw
// JSON object the model produced and may not match the tool's schema.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewToolCallID returns a fresh call id for backends that do not assign one.
func NewToolCallID() string {
	return "call_" + uuid.NewString()
}

// Result answers the call with content.
func (c ToolCall) Result(content string) ToolResult {
	return ToolResult{ToolCallID: c.ID, Name: c.Name, Content: content}
}

// Failure answers the call with an error result.
func (c ToolCall) Failure(message string) ToolResult {
	return ToolResult{ToolCallID: c.ID, Name: c.Name, Content: message, IsError: true}
}

// ToolResult is the answer to a ToolCall, matched by ToolCallID. Name is
// carried for backends that address results by function name (Google).
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"isError,omitempty"`
}

// PromptText is the content as shown to backends without an error flag on
// tool results.
func (r ToolResult) PromptText() string {
	if r.IsError {
		return "Error: " + r.Content
	}
	return r.Content
}

// ToolChoice constrains tool use for a single request.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// NewToolResultMessage collects the results of one round, in the order given.
func NewToolResultMessage(results ...ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}
