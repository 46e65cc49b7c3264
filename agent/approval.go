package agent

import (
	"context"
	"fmt"
	"sync"

	ai "github.com/spetersoncode/agentry"
)

// DefaultRejectReason is the tool result content for a rejection without a reason.
const DefaultRejectReason = "Operation cancelled by user"

// DecisionKind is the outcome of an approval request.
type DecisionKind int

const (
	// Approved runs the call with its original arguments.
	Approved DecisionKind = iota
	// Modified runs the call with substitute arguments.
	Modified
	// Rejected never runs the call; the model receives the reason.
	Rejected
)

func (k DecisionKind) String() string {
	switch k {
	case Approved:
		return "approved"
	case Modified:
		return "modified"
	default:
		return "rejected"
	}
}

// Decision is an approver's answer for one gated tool call.
type Decision struct {
	Kind DecisionKind
	// Arguments replace the call arguments for Modified decisions.
	Arguments string
	// Reason is returned to the model for Rejected decisions.
	Reason string
}

// Approve lets the call run unchanged.
func Approve() Decision {
	return Decision{Kind: Approved}
}

// Modify lets the call run with new JSON arguments. The arguments are
// checked against the tool's input schema like any other call.
func Modify(arguments string) Decision {
	return Decision{Kind: Modified, Arguments: arguments}
}

// Reject blocks the call. An empty reason uses DefaultRejectReason.
func Reject(reason string) Decision {
	if reason == "" {
		reason = DefaultRejectReason
	}
	return Decision{Kind: Rejected, Reason: reason}
}

// ApproverFunc decides a gated tool call. It may block as long as it needs;
// the run waits without a timeout unless WithApprovalTimeout is set.
type ApproverFunc func(ctx context.Context, call ai.ToolCall) Decision

// ApprovalBroker bridges approval decisions made elsewhere (another
// goroutine, an RPC handler, a queue consumer) into a run.
//
// Usage:
//
//	broker := agent.NewApprovalBroker(agent.WithOnRequest(func(call ai.ToolCall) {
//	    notifyOperator(call)
//	}))
//	go func() {
//	    for d := range operatorDecisions {
//	        broker.Decide(d.CallID, d.Decision)
//	    }
//	}()
//	result, err := a.Run(ctx, goal, agent.WithApprover(broker.Approver()))
type ApprovalBroker struct {
	mu        sync.Mutex
	pending   map[string]chan Decision
	calls     []ai.ToolCall
	onRequest func(call ai.ToolCall)
}

// ApprovalBrokerOption configures an ApprovalBroker.
type ApprovalBrokerOption func(*ApprovalBroker)

// WithOnRequest sets a callback invoked when a call starts waiting for a
// decision. It runs on the run loop's goroutine.
func WithOnRequest(fn func(call ai.ToolCall)) ApprovalBrokerOption {
	return func(b *ApprovalBroker) {
		b.onRequest = fn
	}
}

// NewApprovalBroker creates a new ApprovalBroker.
func NewApprovalBroker(opts ...ApprovalBrokerOption) *ApprovalBroker {
	b := &ApprovalBroker{
		pending: make(map[string]chan Decision),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Approver returns an ApproverFunc that can be used with WithApprover.
// The returned function blocks until a decision is received or the context
// is done; a done context rejects the call.
func (b *ApprovalBroker) Approver() ApproverFunc {
	return b.waitForDecision
}

// Decide routes a decision to the pending call with the given ID.
// Returns an error if no call with that ID is waiting.
func (b *ApprovalBroker) Decide(callID string, d Decision) error {
	b.mu.Lock()
	ch, ok := b.pending[callID]
	if ok {
		b.remove(callID)
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending approval for tool call %q", callID)
	}
	ch <- d
	return nil
}

// Approve is a convenience method to approve a pending call.
func (b *ApprovalBroker) Approve(callID string) error {
	return b.Decide(callID, Approve())
}

// Modify is a convenience method to approve a pending call with new arguments.
func (b *ApprovalBroker) Modify(callID, arguments string) error {
	return b.Decide(callID, Modify(arguments))
}

// Reject is a convenience method to reject a pending call.
func (b *ApprovalBroker) Reject(callID, reason string) error {
	return b.Decide(callID, Reject(reason))
}

// Pending returns the calls waiting for a decision, oldest first.
func (b *ApprovalBroker) Pending() []ai.ToolCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ai.ToolCall(nil), b.calls...)
}

// PendingCount returns the number of pending approval requests.
func (b *ApprovalBroker) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// remove drops a pending entry. Callers hold b.mu.
func (b *ApprovalBroker) remove(callID string) {
	delete(b.pending, callID)
	for i, c := range b.calls {
		if c.ID == callID {
			b.calls = append(b.calls[:i:i], b.calls[i+1:]...)
			break
		}
	}
}

func (b *ApprovalBroker) waitForDecision(ctx context.Context, call ai.ToolCall) Decision {
	ch := make(chan Decision, 1)

	b.mu.Lock()
	b.pending[call.ID] = ch
	b.calls = append(b.calls, call)
	b.mu.Unlock()

	if b.onRequest != nil {
		b.onRequest(call)
	}

	select {
	case d := <-ch:
		return d
	case <-ctx.Done():
		b.mu.Lock()
		b.remove(call.ID)
		b.mu.Unlock()
		return Reject("approval cancelled")
	}
}
