package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/conversation"
	"github.com/spetersoncode/agentry/event"
	"github.com/spetersoncode/agentry/schema"
	"github.com/spetersoncode/agentry/tool"
	"github.com/spetersoncode/agentry/validate"
)

// Agent runs goals against a gateway and a tool registry.
// An Agent is stateless between runs and safe for concurrent use.
type Agent struct {
	gateway  ai.Gateway
	registry *tool.Registry
	defaults []Option
}

// New creates an Agent. Options given here apply to every run and can be
// overridden per run. A nil registry means no tools.
func New(gw ai.Gateway, registry *tool.Registry, defaults ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	return &Agent{
		gateway:  gw,
		registry: registry,
		defaults: defaults,
	}
}

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry {
	return a.registry
}

// Run executes the run loop for goal and returns its result. The returned
// error is always a *ConfigError; every runtime outcome, including
// failures, is reported in the Result.
func (a *Agent) Run(ctx context.Context, goal string, opts ...Option) (*Result, error) {
	r, err := a.prepare(goal, opts)
	if err != nil {
		return nil, err
	}
	return r.run(ctx), nil
}

// Stream is a run in progress started by RunStream.
type Stream struct {
	events chan event.Event
	done   chan struct{}
	result *Result
	err    error
}

// Events returns the run's events. The channel is closed when the run ends.
// Events are dropped if the channel buffer fills up.
func (s *Stream) Events() <-chan event.Event {
	return s.events
}

// Wait blocks until the run ends and returns its outcome.
func (s *Stream) Wait() (*Result, error) {
	<-s.done
	return s.result, s.err
}

// RunStream runs the loop in a new goroutine and streams its events.
// Configuration errors end the stream immediately and are returned by Wait.
func (a *Agent) RunStream(ctx context.Context, goal string, opts ...Option) *Stream {
	s := &Stream{
		events: event.NewChannel(),
		done:   make(chan struct{}),
	}
	opts = append(slices.Clone(opts), WithObservers(event.Channel(s.events)))

	go func() {
		defer close(s.done)
		defer close(s.events)
		s.result, s.err = a.Run(ctx, goal, opts...)
	}()
	return s
}

// prepare validates the configuration and builds the run.
func (a *Agent) prepare(goal string, opts []Option) (*run, error) {
	o := ApplyOptions(append(slices.Clone(a.defaults), opts...)...)

	if a.gateway == nil {
		return nil, configError("gateway", "is nil")
	}
	if strings.TrimSpace(goal) == "" {
		return nil, configError("goal", "is empty")
	}
	if o.MaxToolRetries < 0 {
		return nil, configError("MaxToolRetries", fmt.Sprintf("must not be negative, got %d", o.MaxToolRetries))
	}
	if o.MaxOutputRetries < 0 {
		return nil, configError("MaxOutputRetries", fmt.Sprintf("must not be negative, got %d", o.MaxOutputRetries))
	}
	if o.MaxSteps < 1 {
		return nil, configError("MaxSteps", fmt.Sprintf("must be at least 1, got %d", o.MaxSteps))
	}
	if o.schemaErr != nil {
		return nil, &ConfigError{Field: "OutputSchema", Reason: "cannot generate schema", Err: o.schemaErr}
	}
	if o.structured && (o.OutputSchema == nil || len(o.OutputSchema.Schema) == 0) {
		return nil, configError("OutputSchema", "is empty")
	}
	if o.OutputSchema != nil && len(o.OutputSchema.Schema) > 0 {
		if _, err := schema.Compile(o.OutputSchema.Schema); err != nil {
			return nil, &ConfigError{Field: "OutputSchema", Reason: "does not compile", Err: err}
		}
	}
	if o.approverSet && o.Approver == nil {
		return nil, configError("Approver", "is nil")
	}
	for i, v := range o.Validators {
		if v == nil {
			return nil, configError("Validators", fmt.Sprintf("validator %d is nil", i))
		}
		if c, ok := v.(validate.Configurable); ok {
			if err := c.ConfigError(); err != nil {
				return nil, &ConfigError{Field: "Validators", Reason: fmt.Sprintf("validator %d", i), Err: err}
			}
		}
	}

	registry := a.registry
	if o.Tools != nil {
		sub, err := a.registry.Subset(o.Tools...)
		if err != nil {
			return nil, &ConfigError{Field: "Tools", Reason: "unknown tool", Err: err}
		}
		registry = sub
	}
	for _, name := range o.ApprovalRequired {
		if _, err := registry.Resolve(name); err != nil {
			return nil, &ConfigError{Field: "ApprovalRequired", Reason: "unknown tool", Err: err}
		}
	}

	transcript, err := conversation.New(o.History...)
	if err != nil {
		return nil, &ConfigError{Field: "History", Reason: "invalid transcript", Err: err}
	}
	if pending := transcript.Unanswered(); len(pending) > 0 {
		return nil, configError("History", fmt.Sprintf("tool calls without results: %s", strings.Join(pending, ", ")))
	}

	var validators []validate.Validator
	if o.OutputSchema != nil {
		validators = append(validators, validate.Schema(o.OutputSchema.Schema))
	}
	if o.decoder != nil {
		validators = append(validators, o.decoder)
	}
	validators = append(validators, o.Validators...)

	r := &run{
		id:         uuid.NewString(),
		goal:       goal,
		gateway:    a.gateway,
		registry:   registry,
		opts:       o,
		transcript: transcript,
		validators: validators,
		gateAll:    len(o.ApprovalRequired) == 0,
		seen:       make(map[string]bool),
	}
	for _, spec := range registry.Specs() {
		if spec.SideEffects {
			r.gateAll = false
		}
	}
	for _, m := range o.History {
		for _, c := range m.ToolCalls {
			r.seen[c.ID] = true
		}
	}
	return r, nil
}

// run is the state of one execution of the loop.
type run struct {
	id         string
	goal       string
	gateway    ai.Gateway
	registry   *tool.Registry
	opts       *Options
	transcript *conversation.State
	validators []validate.Validator
	gateAll    bool

	state State
	step  int
	usage ai.Usage
	seen  map[string]bool
	start int

	// mu serializes observer delivery; tools of a parallel round notify
	// from their own goroutines.
	mu sync.Mutex
}

func (r *run) notify(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.RunID = r.id
	e.Step = r.step
	e.State = string(r.state)
	event.Notify(r.opts.Observers, e)
}

func (r *run) run(ctx context.Context) *Result {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	r.start = r.transcript.Len()
	if err := r.transcript.Append(ai.NewUserMessage(r.goal)); err != nil {
		return r.fail(&Failure{Kind: FailBackend, Err: err})
	}
	r.state = StateAwaitingModel
	r.notify(event.Event{Type: event.RunStart})

	callOpts := r.callOptions(ctx)
	toolFailures, outputRetries := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return r.fail(&Failure{Kind: FailCancelled, Err: err})
		}
		if r.step >= r.opts.MaxSteps {
			return r.fail(&Failure{Kind: FailMaxSteps, Feedback: fmt.Sprintf("no accepted output after %d turns", r.step)})
		}

		r.step++
		r.state = StateAwaitingModel
		r.notify(event.Event{Type: event.TurnStart})

		turn, err := r.complete(ctx, callOpts)
		if err != nil {
			r.notify(event.Event{Type: event.TurnEnd, Error: err})
			if ctx.Err() != nil {
				return r.fail(&Failure{Kind: FailCancelled, Err: err})
			}
			return r.fail(&Failure{Kind: FailBackend, Err: err})
		}
		if turn == nil {
			turn = ai.NewFinalTurn("")
		}
		r.usage = r.usage.Add(turn.Usage)
		usage := turn.Usage
		r.notify(event.Event{Type: event.TurnEnd, Usage: &usage})

		if !turn.IsFinal() {
			calls := r.uniqueCalls(turn.ToolCalls)
			if err := r.transcript.Append(ai.NewAssistantMessage(turn.Content, calls...)); err != nil {
				return r.fail(&Failure{Kind: FailBackend, Err: err})
			}

			r.state = StateDispatchingTools
			round, failure := r.dispatch(ctx, calls)
			if round.results != nil {
				if err := r.transcript.Append(ai.NewToolResultMessage(round.results...)); err != nil && failure == nil {
					failure = &Failure{Kind: FailFatalTool, Err: err}
				}
			}
			if failure != nil {
				return r.fail(failure)
			}
			if err := ctx.Err(); err != nil {
				return r.fail(&Failure{Kind: FailCancelled, Err: err})
			}

			if !round.failed {
				toolFailures = 0
				continue
			}
			toolFailures++
			if toolFailures > r.opts.MaxToolRetries {
				return r.fail(&Failure{Kind: FailToolRetries, Feedback: round.lastError})
			}
			r.state = StateRetrying
			r.notify(event.Event{Type: event.Retry, Feedback: round.lastError})
			continue
		}

		if err := r.transcript.Append(ai.NewAssistantMessage(turn.Content)); err != nil {
			return r.fail(&Failure{Kind: FailBackend, Err: err})
		}

		r.state = StateValidating
		verdict, err := validate.Run(ctx, validate.NewCandidate(turn.Content, r.opts.Deps), r.validators...)
		if err != nil {
			if ctx.Err() != nil {
				return r.fail(&Failure{Kind: FailCancelled, Err: err})
			}
			return r.fail(&Failure{Kind: FailValidator, Err: err})
		}
		r.notify(event.Event{Type: event.Verdict, Accepted: verdict.Accepted(), Feedback: verdict.Feedback()})

		if verdict.Accepted() {
			return r.accept(turn.Content, verdict.Value())
		}
		if outputRetries >= r.opts.MaxOutputRetries {
			return r.fail(&Failure{Kind: FailOutputRetries, Feedback: verdict.Feedback()})
		}
		outputRetries++

		r.state = StateRetrying
		if err := r.transcript.Append(ai.NewFeedbackMessage(verdict.Feedback())); err != nil {
			return r.fail(&Failure{Kind: FailBackend, Err: err})
		}
		r.notify(event.Event{Type: event.Retry, Feedback: verdict.Feedback()})
	}
}

// complete asks the gateway for the next turn, streaming text deltas to
// observers when streaming is enabled and supported.
func (r *run) complete(ctx context.Context, opts []ai.Option) (*ai.ModelTurn, error) {
	sg, ok := r.gateway.(ai.StreamingGateway)
	if !r.opts.Streaming || !ok {
		return r.gateway.Complete(ctx, r.transcript.Messages(), opts...)
	}

	ch, err := sg.CompleteStream(ctx, r.transcript.Messages(), opts...)
	if err != nil {
		return nil, err
	}
	var turn *ai.ModelTurn
	for ev := range ch {
		switch {
		case ev.Err != nil:
			return nil, ev.Err
		case ev.Delta != "":
			r.notify(event.Event{Type: event.TextDelta, Delta: ev.Delta})
		}
		if ev.Done {
			turn = ev.Turn
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if turn == nil {
		return nil, ai.NewPermanentError("stream ended without a final turn", 0, nil)
	}
	return turn, nil
}

// callOptions builds the gateway options shared by every turn of the run.
func (r *run) callOptions(ctx context.Context) []ai.Option {
	var opts []ai.Option
	if !r.opts.Model.IsZero() {
		opts = append(opts, ai.WithModel(r.opts.Model.Ref()))
	}
	if system := r.instructions(ctx); system != "" {
		opts = append(opts, ai.WithSystem(system))
	}
	if tools := r.registry.Tools(); len(tools) > 0 {
		opts = append(opts, ai.WithTools(tools...))
	}
	if r.opts.OutputSchema != nil {
		opts = append(opts, ai.WithResponseSchema(*r.opts.OutputSchema))
	}
	return append(opts, r.opts.GatewayOptions...)
}

func (r *run) instructions(ctx context.Context) string {
	var parts []string
	if s := strings.TrimSpace(r.opts.Instructions); s != "" {
		parts = append(parts, s)
	}
	for _, fn := range r.opts.InstructionFuncs {
		if s := strings.TrimSpace(fn(ctx, r.opts.Deps)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// uniqueCalls gives every call an ID not used earlier in the transcript.
func (r *run) uniqueCalls(calls []ai.ToolCall) []ai.ToolCall {
	out := make([]ai.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" || r.seen[c.ID] {
			c.ID = ai.NewToolCallID()
		}
		r.seen[c.ID] = true
		out[i] = c
	}
	return out
}

func (r *run) accept(output string, value any) *Result {
	r.state = StateAccepted
	res := r.result(StatusAccepted)
	res.Output = output
	res.Value = value
	r.notify(event.Event{Type: event.RunEnd, Accepted: true, Usage: &res.Usage})
	return res
}

func (r *run) fail(f *Failure) *Result {
	r.state = StateFailed
	res := r.result(StatusFailed)
	res.Failure = f
	r.notify(event.Event{
		Type:     event.RunEnd,
		Failure:  string(f.Kind),
		Feedback: f.Feedback,
		Error:    f.Err,
		Usage:    &res.Usage,
	})
	return res
}

func (r *run) result(status Status) *Result {
	cost := decimal.Zero
	if !r.opts.Model.IsZero() {
		cost = r.opts.Model.Cost(r.usage)
	}
	return &Result{
		RunID:      r.id,
		Status:     status,
		Transcript: r.transcript,
		Usage:      r.usage,
		Cost:       cost,
		Steps:      r.step,
		start:      r.start,
	}
}

// round is the outcome of dispatching one turn's tool calls.
type round struct {
	results   []ai.ToolResult
	failed    bool
	lastError string
}

type dispatchSlot struct {
	call     ai.ToolCall
	spec     tool.Spec
	invoke   bool
	rejected bool
	result   ai.ToolResult
	err      error
}

// dispatch resolves, gates and invokes the calls of one turn. Results are
// returned in request order regardless of completion order.
func (r *run) dispatch(ctx context.Context, calls []ai.ToolCall) (round, *Failure) {
	slots := make([]*dispatchSlot, len(calls))
	for i, call := range calls {
		spec, err := r.registry.Resolve(call.Name)
		if err != nil {
			c := call
			r.notify(event.Event{Type: event.ToolDispatched, ToolCall: &c, Error: err})
			out := unanswered(calls, "not executed: another call in this turn failed")
			out.results[i] = call.Failure(err.Error())
			out.lastError = err.Error()
			return out, &Failure{Kind: FailFatalTool, Feedback: err.Error(), Err: err}
		}
		slots[i] = &dispatchSlot{call: call, spec: spec, invoke: true}
	}

	for _, s := range slots {
		if !r.gated(s.spec) {
			continue
		}
		call := s.call
		r.notify(event.Event{Type: event.ApprovalRequested, ToolCall: &call})
		d := r.decide(ctx, call)
		switch d.Kind {
		case Approved:
			r.notify(event.Event{Type: event.ToolApproved, ToolCall: &call})
		case Modified:
			s.call.Arguments = d.Arguments
			modified := s.call
			r.notify(event.Event{Type: event.ToolModified, ToolCall: &modified})
		default:
			reason := d.Reason
			if reason == "" {
				reason = DefaultRejectReason
			}
			s.invoke, s.rejected = false, true
			s.result = call.Failure(reason)
			r.notify(event.Event{Type: event.ToolRejected, ToolCall: &call, ToolResult: &s.result, Feedback: reason})
		}
		if err := ctx.Err(); err != nil {
			out := unanswered(calls, "not executed: run cancelled")
			for i, slot := range slots {
				if slot.rejected {
					out.results[i] = slot.result
				}
			}
			return out, &Failure{Kind: FailCancelled, Err: err}
		}
	}

	var pending []*dispatchSlot
	for _, s := range slots {
		if s.invoke {
			pending = append(pending, s)
		}
	}
	if r.opts.ParallelToolCalls && len(pending) > 1 {
		var wg sync.WaitGroup
		for _, s := range pending {
			wg.Add(1)
			go func(s *dispatchSlot) {
				defer wg.Done()
				r.invoke(ctx, s)
			}(s)
		}
		wg.Wait()
	} else {
		for _, s := range pending {
			r.invoke(ctx, s)
		}
	}

	out := round{results: make([]ai.ToolResult, len(slots))}
	var fatal error
	for i, s := range slots {
		out.results[i] = s.result
		if s.err != nil && fatal == nil {
			fatal = s.err
		}
		if s.result.IsError && !s.rejected {
			out.failed = true
			out.lastError = s.result.Content
		}
	}
	if fatal != nil {
		return out, &Failure{Kind: FailFatalTool, Feedback: out.lastError, Err: fatal}
	}
	return out, nil
}

// unanswered answers every call with an error so the transcript never
// ends on tool calls without results.
func unanswered(calls []ai.ToolCall, reason string) round {
	out := round{results: make([]ai.ToolResult, len(calls)), failed: true, lastError: reason}
	for i, call := range calls {
		out.results[i] = call.Failure(reason)
	}
	return out
}

func (r *run) invoke(ctx context.Context, s *dispatchSlot) {
	call := s.call
	r.notify(event.Event{Type: event.ToolDispatched, ToolCall: &call})

	execCtx := ctx
	if r.opts.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.opts.HandlerTimeout)
		defer cancel()
	}

	s.result, s.err = r.registry.Invoke(execCtx, s.spec, call, r.opts.Deps)
	if s.err != nil {
		var terr *tool.ToolError
		if !errors.As(s.err, &terr) || !terr.Fatal {
			s.result = call.Failure(s.err.Error())
			s.err = nil
		}
	}
	result := s.result
	r.notify(event.Event{Type: event.ToolResult, ToolCall: &call, ToolResult: &result, Error: s.err})
}

// gated reports whether a call to spec needs a decision.
func (r *run) gated(spec tool.Spec) bool {
	if r.opts.Approver == nil {
		return false
	}
	if spec.SideEffects || r.gateAll {
		return true
	}
	return slices.Contains(r.opts.ApprovalRequired, spec.Name())
}

// decide asks the approver, enforcing the approval timeout when set.
func (r *run) decide(ctx context.Context, call ai.ToolCall) Decision {
	timeout := r.opts.ApprovalTimeout
	if timeout <= 0 {
		return r.opts.Approver(ctx, call)
	}

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan Decision, 1)
	go func() {
		ch <- r.opts.Approver(actx, call)
	}()

	select {
	case d := <-ch:
		return d
	case <-actx.Done():
		if ctx.Err() != nil {
			return Reject("approval cancelled")
		}
		return Reject(fmt.Sprintf("approval timed out after %s", timeout))
	}
}
