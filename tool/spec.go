package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/schema"
)

// Kind says what a tool's handler receives.
type Kind int

const (
	// Stateless tools see only the call.
	Stateless Kind = iota
	// ContextBound tools also receive the run's deps.
	ContextBound
)

func (k Kind) String() string {
	if k == ContextBound {
		return "context_bound"
	}
	return "stateless"
}

// Spec is a registered tool: its model-facing definition plus how to run it.
type Spec struct {
	Tool    ai.Tool
	Kind    Kind
	Handler Handler
	Bound   BoundHandler

	// SideEffects routes calls through the approval gate.
	SideEffects bool
	// OutputType describes what the tool returns, for catalogs and docs.
	OutputType string

	params    *schema.Schema
	schemaErr error
}

// Name returns the tool name.
func (s Spec) Name() string {
	return s.Tool.Name
}

func (s *Spec) compile() {
	if s.params != nil || s.schemaErr != nil {
		return
	}
	s.params, s.schemaErr = schema.Compile(s.Tool.Parameters)
}

// SpecOption adjusts a Spec built by one of the constructors.
type SpecOption func(*Spec)

// WithSideEffects marks the tool as requiring approval.
func WithSideEffects() SpecOption {
	return func(s *Spec) {
		s.SideEffects = true
	}
}

// WithOutputType names what the tool returns.
func WithOutputType(name string) SpecOption {
	return func(s *Spec) {
		s.OutputType = name
	}
}

func newSpec(t ai.Tool, kind Kind, opts []SpecOption) Spec {
	s := Spec{Tool: t, Kind: kind}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// decodeArgs unmarshals call arguments. Empty arguments decode as {}.
func decodeArgs[T any](call ai.ToolCall) (T, error) {
	var args T
	raw := strings.TrimSpace(call.Arguments)
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return args, NewToolError("invalid arguments: %v", err)
	}
	return args, nil
}

// Func creates a stateless tool with a schema generated from T.
// Panics if schema generation fails.
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("roll_die", "Roll a die", func(ctx context.Context, args RollArgs) (string, error) {
//	        return strconv.Itoa(rand.IntN(args.Sides) + 1), nil
//	    }),
//	)
func Func[T any](name, description string, fn TypedHandler[T], opts ...SpecOption) Spec {
	s := newSpec(ai.Tool{
		Name:        name,
		Description: description,
		Parameters:  ai.MustSchemaFor[T](),
	}, Stateless, opts)
	s.Handler = func(ctx context.Context, call ai.ToolCall) (string, error) {
		args, err := decodeArgs[T](call)
		if err != nil {
			return "", err
		}
		return fn(ctx, args)
	}
	return s
}

// WithDeps creates a context-bound tool whose handler receives deps as D.
// A run whose deps are not a D fails with a fatal ToolError.
func WithDeps[D, T any](name, description string, fn DepsHandler[D, T], opts ...SpecOption) Spec {
	s := newSpec(ai.Tool{
		Name:        name,
		Description: description,
		Parameters:  ai.MustSchemaFor[T](),
	}, ContextBound, opts)
	s.Bound = func(ctx context.Context, deps any, call ai.ToolCall) (string, error) {
		d, ok := deps.(D)
		if !ok {
			want := reflect.TypeOf((*D)(nil)).Elem()
			return "", NewFatalError(fmt.Sprintf("deps type mismatch: want %s, got %T", want, deps), nil)
		}
		args, err := decodeArgs[T](call)
		if err != nil {
			return "", err
		}
		return fn(ctx, d, args)
	}
	return s
}

// WithHandler creates a stateless tool from a raw Handler and schema.
func WithHandler(name, description string, params json.RawMessage, h Handler, opts ...SpecOption) Spec {
	s := newSpec(ai.Tool{Name: name, Description: description, Parameters: params}, Stateless, opts)
	s.Handler = h
	return s
}

// WithBound creates a context-bound tool from a raw BoundHandler and schema.
func WithBound(name, description string, params json.RawMessage, h BoundHandler, opts ...SpecOption) Spec {
	s := newSpec(ai.Tool{Name: name, Description: description, Parameters: params}, ContextBound, opts)
	s.Bound = h
	return s
}
