package agent

import (
	"fmt"

	"github.com/shopspring/decimal"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/conversation"
)

// State is a position in the run loop.
type State string

const (
	StateAwaitingModel    State = "awaiting_model"
	StateDispatchingTools State = "dispatching_tools"
	StateValidating       State = "validating"
	StateRetrying         State = "retrying"
	StateAccepted         State = "accepted"
	StateFailed           State = "failed"
)

// Status is the terminal outcome of a run.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusFailed   Status = "failed"
)

// FailureKind says why a run failed.
type FailureKind string

const (
	// FailToolRetries: more consecutive failed tool rounds than MaxToolRetries.
	FailToolRetries FailureKind = "tool_retries"
	// FailOutputRetries: every candidate was rejected and the output budget is spent.
	FailOutputRetries FailureKind = "output_retries"
	// FailBackend: the gateway failed after its own transport retries.
	FailBackend FailureKind = "backend"
	// FailFatalTool: an unknown tool or a fatal ToolError.
	FailFatalTool FailureKind = "fatal_tool"
	// FailValidator: a validator could not run.
	FailValidator FailureKind = "validator"
	// FailMaxSteps: the model turn limit was reached.
	FailMaxSteps FailureKind = "max_steps"
	// FailCancelled: the context was cancelled.
	FailCancelled FailureKind = "cancelled"
)

// Failure describes a failed run.
type Failure struct {
	Kind FailureKind
	// Feedback is the last rejection feedback or tool error content.
	Feedback string
	Err      error
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Feedback != "" {
		msg += ": " + f.Feedback
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return "agent: run failed: " + msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a run.
type Result struct {
	RunID  string
	Status Status

	// Output is the final model content of an accepted run.
	Output string
	// Value is the validated value: the decoded output type when one is
	// set, otherwise the last validator's value or Output.
	Value any

	// Transcript holds the history followed by every message of this run.
	Transcript *conversation.State
	Failure    *Failure

	Usage ai.Usage
	// Cost is zero when the model has no pricing.
	Cost  decimal.Decimal
	Steps int

	start int
}

// Accepted reports whether the run produced an accepted output.
func (r *Result) Accepted() bool {
	return r.Status == StatusAccepted
}

// Err returns the failure as an error, or nil for an accepted run.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// NewMessages returns the messages this run appended, starting with the goal.
// Pass them to WithHistory to continue the conversation.
func (r *Result) NewMessages() []ai.Message {
	if r.Transcript == nil {
		return nil
	}
	return r.Transcript.Since(r.start)
}

// Messages returns the full transcript.
func (r *Result) Messages() []ai.Message {
	if r.Transcript == nil {
		return nil
	}
	return r.Transcript.Messages()
}

// Output decodes an accepted result's value as T.
func Output[T any](r *Result) (T, error) {
	var zero T
	if !r.Accepted() {
		return zero, r.Err()
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, fmt.Errorf("agent: result value is %T, not %T", r.Value, zero)
	}
	return v, nil
}
