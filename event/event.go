// Package event defines the observable events of a run and the observers
// that consume them.
package event

import (
	"time"

	ai "github.com/spetersoncode/agentry"
)

// Type identifies the kind of event occurring during a run.
type Type string

// Run lifecycle events
const (
	// RunStart fires once, before the first model turn.
	RunStart Type = "run_start"

	// RunEnd fires once when the run is accepted or fails.
	RunEnd Type = "run_end"
)

// Turn lifecycle events
const (
	// TurnStart fires before each gateway call.
	TurnStart Type = "turn_start"

	// TurnEnd fires after the gateway answers.
	TurnEnd Type = "turn_end"

	// TextDelta fires for each chunk of streamed model text.
	TextDelta Type = "text_delta"
)

// Tool call events
const (
	// ToolDispatched fires when a requested call has been resolved and is about to be handled.
	ToolDispatched Type = "tool_dispatched"

	// ToolResult fires when a call's result is available.
	ToolResult Type = "tool_result"
)

// Approval events
const (
	// ApprovalRequested fires when a gated call waits for a decision.
	ApprovalRequested Type = "approval_requested"

	// ToolApproved fires when a gated call is approved as requested.
	ToolApproved Type = "tool_approved"

	// ToolModified fires when a gated call is approved with new arguments.
	ToolModified Type = "tool_modified"

	// ToolRejected fires when a gated call is rejected or times out.
	ToolRejected Type = "tool_rejected"
)

// Validation events
const (
	// Verdict fires after the validators have judged a final candidate.
	Verdict Type = "verdict"

	// Retry fires when the loop goes back to the model with feedback.
	Retry Type = "retry"
)

// Event represents an observable occurrence during a run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// RunID identifies the run that produced the event.
	RunID string

	// Step is the current model turn (1-indexed).
	Step int

	// State is the run loop state the event was raised from.
	State string

	// Delta is the text chunk of a TextDelta event.
	Delta string

	// ToolCall is set for tool and approval events.
	ToolCall *ai.ToolCall

	// ToolResult is set for ToolResult and ToolRejected events.
	ToolResult *ai.ToolResult

	// Accepted is the outcome for Verdict and RunEnd events.
	Accepted bool

	// Feedback carries rejection feedback or a rejection reason.
	Feedback string

	// Failure is the failure kind for a failed RunEnd.
	Failure string

	// Usage is set on TurnEnd (that turn) and RunEnd (the whole run).
	Usage *ai.Usage

	// Error is set when a turn or the run ended with an error.
	Error error

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit sends an event to a channel without blocking.
// Events are dropped when the channel is full.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
	default:
	}
}

// NewChannel creates a buffered event channel with a standard buffer size.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
