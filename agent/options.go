package agent

import (
	"context"
	"time"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/event"
	"github.com/spetersoncode/agentry/model"
	"github.com/spetersoncode/agentry/validate"
)

// InstructionFunc produces instructions from the run's deps.
// It is evaluated once per run.
type InstructionFunc func(ctx context.Context, deps any) string

// Options contains configuration for one run. It is not modified once the
// run starts.
type Options struct {
	// Model selects the gateway model. Zero uses the gateway default.
	Model model.ChatModel

	// Instructions are the static system instructions.
	Instructions string

	// InstructionFuncs add dynamic instructions after the static ones.
	InstructionFuncs []InstructionFunc

	// Tools restricts the run to the named registry tools. Nil means all.
	Tools []string

	// OutputSchema asks the model for structured output and validates it.
	OutputSchema *ai.ResponseSchema

	// Validators run, in order, after the schema check and the output decoder.
	Validators []validate.Validator

	// MaxToolRetries bounds consecutive tool rounds with errors. Default 3.
	MaxToolRetries int

	// MaxOutputRetries bounds rejected final answers. Default 1.
	MaxOutputRetries int

	// MaxSteps bounds the number of model turns. Default 25.
	MaxSteps int

	// Deps is handed by reference to context-bound tools, dynamic
	// instructions and validators.
	Deps any

	// Approver decides gated tool calls. Nil approves every call.
	Approver ApproverFunc

	// ApprovalRequired names tools that always need approval.
	ApprovalRequired []string

	// ApprovalTimeout rejects a pending approval after the duration.
	// Zero waits indefinitely.
	ApprovalTimeout time.Duration

	// ParallelToolCalls runs the calls of one turn concurrently. Default true.
	ParallelToolCalls bool

	// HandlerTimeout bounds each tool invocation. Zero means no limit.
	HandlerTimeout time.Duration

	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration

	// Observers receive run events synchronously.
	Observers []event.Observer

	// Streaming requests token streaming from a gateway that supports it.
	// Text arrives as TextDelta events; the loop still acts on whole turns.
	Streaming bool

	// History seeds the conversation.
	History []ai.Message

	// GatewayOptions are passed through on every model call.
	GatewayOptions []ai.Option

	decoder     validate.Validator
	structured  bool
	schemaErr   error
	approverSet bool
}

// Option is a functional option for configuring a run.
type Option func(*Options)

// WithModel sets the model for every gateway call of the run.
func WithModel(m model.ChatModel) Option {
	return func(o *Options) {
		o.Model = m
	}
}

// WithInstructions sets the static system instructions.
func WithInstructions(instructions string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}

// WithInstructionFunc adds dynamic instructions computed from deps.
func WithInstructionFunc(fn InstructionFunc) Option {
	return func(o *Options) {
		o.InstructionFuncs = append(o.InstructionFuncs, fn)
	}
}

// WithTools restricts the run to the named tools.
func WithTools(names ...string) Option {
	return func(o *Options) {
		o.Tools = append([]string{}, names...)
	}
}

// WithOutput requests structured output of type T. The model receives the
// schema generated from T, candidates are checked against it, and an
// accepted Result.Value holds a T.
func WithOutput[T any](description string) Option {
	return func(o *Options) {
		o.structured = true
		rs, err := ai.ResponseSchemaFor[T](description)
		if err != nil {
			o.schemaErr = err
			return
		}
		o.OutputSchema = &rs
		o.decoder = validate.Typed[T]()
	}
}

// WithOutputSchema requests structured output matching a raw JSON schema.
// An accepted Result.Value holds the document as json.RawMessage.
func WithOutputSchema(rs ai.ResponseSchema) Option {
	return func(o *Options) {
		o.structured = true
		o.OutputSchema = &rs
		o.decoder = nil
	}
}

// WithValidators appends output validators.
func WithValidators(validators ...validate.Validator) Option {
	return func(o *Options) {
		o.Validators = append(o.Validators, validators...)
	}
}

// WithMaxToolRetries sets how many consecutive failed tool rounds are tolerated.
func WithMaxToolRetries(n int) Option {
	return func(o *Options) {
		o.MaxToolRetries = n
	}
}

// WithMaxOutputRetries sets how many rejected final answers are retried.
func WithMaxOutputRetries(n int) Option {
	return func(o *Options) {
		o.MaxOutputRetries = n
	}
}

// WithMaxSteps sets the maximum number of model turns.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithDeps sets the shared dependency value.
func WithDeps(deps any) Option {
	return func(o *Options) {
		o.Deps = deps
	}
}

// WithApprover sets the human-in-the-loop approval function.
// A nil approver is a configuration error.
func WithApprover(fn ApproverFunc) Option {
	return func(o *Options) {
		o.Approver = fn
		o.approverSet = true
	}
}

// WithApprovalRequired names tools that require approval in addition to
// tools marked with side effects. When no tool is marked and no names are
// given, every call requires approval.
func WithApprovalRequired(tools ...string) Option {
	return func(o *Options) {
		o.ApprovalRequired = append(o.ApprovalRequired, tools...)
	}
}

// WithApprovalTimeout rejects approvals that are still pending after d.
func WithApprovalTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ApprovalTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithHandlerTimeout sets the timeout for each individual tool handler.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithTimeout sets a deadline for the entire run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithObservers adds event observers.
func WithObservers(observers ...event.Observer) Option {
	return func(o *Options) {
		o.Observers = append(o.Observers, observers...)
	}
}

// WithStreaming enables TextDelta events when the gateway implements
// ai.StreamingGateway. Other gateways are called as usual.
func WithStreaming(enabled bool) Option {
	return func(o *Options) {
		o.Streaming = enabled
	}
}

// WithHistory seeds the run with earlier messages, typically a previous
// Result's NewMessages.
func WithHistory(msgs ...ai.Message) Option {
	return func(o *Options) {
		o.History = append(o.History, msgs...)
	}
}

// WithGatewayOptions passes options through to every gateway call.
func WithGatewayOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.GatewayOptions = append(o.GatewayOptions, opts...)
	}
}

// WithMaxTokens is a convenience option to set max tokens for gateway calls.
func WithMaxTokens(n int) Option {
	return WithGatewayOptions(ai.WithMaxTokens(n))
}

// WithTemperature is a convenience option to set temperature for gateway calls.
func WithTemperature(t float64) Option {
	return WithGatewayOptions(ai.WithTemperature(t))
}

// ApplyOptions applies functional options to an Options struct with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxToolRetries:    3,
		MaxOutputRetries:  1,
		MaxSteps:          25,
		ParallelToolCalls: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
