package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ai "github.com/spetersoncode/agentry"
)

// Registry manages registered tools. Tools keep their registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Spec
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Spec),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name is already registered.
// A schema that fails to compile is kept; invoking the tool is then fatal.
func (r *Registry) Register(spec Spec) error {
	if spec.Tool.Name == "" {
		return fmt.Errorf("tool: name is required")
	}
	if spec.Handler == nil && spec.Bound == nil {
		return fmt.Errorf("tool: %s has no handler", spec.Tool.Name)
	}
	spec.compile()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[spec.Tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: spec.Tool.Name}
	}
	r.tools[spec.Tool.Name] = spec
	r.order = append(r.order, spec.Tool.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Add registers one or more tools and returns the registry for chaining.
// Panics if any tool is invalid or already registered.
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", weatherFn),
//	    tool.Func("search", "Search web", searchFn),
//	)
func (r *Registry) Add(specs ...Spec) *Registry {
	for _, s := range specs {
		r.MustRegister(s)
	}
	return r
}

// Unregister removes a tool from the registry.
// It is a no-op if the tool is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.tools[name]
	if !ok {
		return Spec{}, &ErrToolNotFound{Name: name}
	}
	return s, nil
}

// Tools returns the tool definitions in registration order.
func (r *Registry) Tools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ai.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].Tool)
	}
	return tools
}

// Specs returns the registered specs in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name])
	}
	return specs
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Subset returns a new registry holding only the named tools, in the
// order given. Unknown names return ErrToolNotFound.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := NewRegistry()
	for _, name := range names {
		s, ok := r.tools[name]
		if !ok {
			return nil, &ErrToolNotFound{Name: name}
		}
		if _, dup := sub.tools[name]; dup {
			continue
		}
		sub.tools[name] = s
		sub.order = append(sub.order, name)
	}
	return sub, nil
}

// Invoke runs one call against a resolved tool.
//
// Arguments are checked against the input schema first; a mismatch is an
// error result naming the offending field. Ordinary handler errors and
// recoverable ToolErrors also become error results. A fatal ToolError is
// returned as the error, alongside an error result for the transcript.
func (r *Registry) Invoke(ctx context.Context, spec Spec, call ai.ToolCall, deps any) (result ai.ToolResult, err error) {
	result = call.Result("")
	spec.compile()

	if spec.schemaErr != nil {
		terr := &ToolError{Tool: spec.Tool.Name, Message: "invalid input schema", Fatal: true, Err: spec.schemaErr}
		result.Content, result.IsError = terr.Error(), true
		return result, terr
	}

	args := call.Arguments
	if args == "" {
		args = "{}"
	}
	if verr := spec.params.Validate([]byte(args)); verr != nil {
		result.Content = fmt.Sprintf("invalid arguments for %s: %v", spec.Tool.Name, verr)
		result.IsError = true
		return result, nil
	}

	defer func() {
		if p := recover(); p != nil {
			terr := &ToolError{Tool: spec.Tool.Name, Message: fmt.Sprintf("panic: %v", p), Fatal: true}
			result.Content, result.IsError = terr.Error(), true
			err = terr
		}
	}()

	var content string
	var herr error
	switch {
	case spec.Kind == ContextBound && spec.Bound != nil:
		content, herr = spec.Bound(ctx, deps, call)
	case spec.Handler != nil:
		content, herr = spec.Handler(ctx, call)
	default:
		terr := &ToolError{Tool: spec.Tool.Name, Message: "no handler for " + spec.Kind.String() + " tool", Fatal: true}
		result.Content, result.IsError = terr.Error(), true
		return result, terr
	}

	if herr == nil {
		result.Content = content
		return result, nil
	}

	result.IsError = true
	var terr *ToolError
	if errors.As(herr, &terr) {
		if terr.Tool == "" {
			terr.Tool = spec.Tool.Name
		}
		result.Content = terr.Message
		if terr.Fatal {
			result.Content = terr.Error()
			return result, terr
		}
		return result, nil
	}
	result.Content = herr.Error()
	return result, nil
}

// Execute resolves the call's tool and invokes it.
// An unknown tool is returned as ErrToolNotFound.
func (r *Registry) Execute(ctx context.Context, call ai.ToolCall, deps any) (ai.ToolResult, error) {
	spec, err := r.Resolve(call.Name)
	if err != nil {
		return ai.ToolResult{}, err
	}
	return r.Invoke(ctx, spec, call, deps)
}
