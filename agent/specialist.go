package agent

import (
	"slices"
	"sync"

	"github.com/spetersoncode/agentry/tool"
)

// Specialist is a named sub-agent a coordinator can delegate to.
type Specialist struct {
	Name         string
	Description  string
	Agent        *Agent
	Capabilities []string
	Options      []ToolOption
}

// SpecialistOption configures a Specialist.
type SpecialistOption func(*Specialist)

// WithCapabilities tags the specialist for ByCapability lookups.
func WithCapabilities(caps ...string) SpecialistOption {
	return func(s *Specialist) {
		s.Capabilities = caps
	}
}

// WithSpecialistToolOptions sets tool options used when the specialist is
// exposed as a tool.
func WithSpecialistToolOptions(opts ...ToolOption) SpecialistOption {
	return func(s *Specialist) {
		s.Options = append(s.Options, opts...)
	}
}

// SpecialistRegistry collects the sub-agents of a multi-agent setup and
// turns them into delegation tools.
//
//	team := agent.NewSpecialistRegistry().
//	    Register("research", "Research a topic and report facts", researcher).
//	    Register("write", "Write prose from research notes", writer)
//
//	coordinator := agent.New(gw, team.Registry())
type SpecialistRegistry struct {
	mu          sync.RWMutex
	specialists map[string]*Specialist
}

// NewSpecialistRegistry creates an empty specialist registry.
func NewSpecialistRegistry() *SpecialistRegistry {
	return &SpecialistRegistry{
		specialists: make(map[string]*Specialist),
	}
}

// Register adds a specialist, replacing any with the same name.
func (r *SpecialistRegistry) Register(name, description string, a *Agent, opts ...SpecialistOption) *SpecialistRegistry {
	s := &Specialist{Name: name, Description: description, Agent: a}
	for _, opt := range opts {
		opt(s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specialists[name] = s
	return r
}

// Get retrieves a specialist by name, or nil.
func (r *SpecialistRegistry) Get(name string) *Specialist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.specialists[name]
}

// Names returns the specialist names in sorted order.
func (r *SpecialistRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specialists))
	for name := range r.specialists {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered specialists.
func (r *SpecialistRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specialists)
}

// ByCapability returns the specialists tagged with capability, sorted by name.
func (r *SpecialistRegistry) ByCapability(capability string) []*Specialist {
	var matches []*Specialist
	for _, name := range r.Names() {
		s := r.Get(name)
		if s != nil && slices.Contains(s.Capabilities, capability) {
			matches = append(matches, s)
		}
	}
	return matches
}

// AsTools converts every specialist into a delegation tool, sorted by name.
// opts apply to every tool after the specialist's own options.
func (r *SpecialistRegistry) AsTools(opts ...ToolOption) []tool.Spec {
	names := r.Names()
	specs := make([]tool.Spec, 0, len(names))
	for _, name := range names {
		s := r.Get(name)
		if s == nil {
			continue
		}
		toolOpts := append([]ToolOption{WithToolDescription(s.Description)}, s.Options...)
		specs = append(specs, NewTool(s.Name, s.Agent, append(toolOpts, opts...)...))
	}
	return specs
}

// RegisterTo adds every specialist tool to registry.
func (r *SpecialistRegistry) RegisterTo(registry *tool.Registry, opts ...ToolOption) error {
	for _, s := range r.AsTools(opts...) {
		if err := registry.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns a new tool registry holding every specialist tool.
func (r *SpecialistRegistry) Registry(opts ...ToolOption) *tool.Registry {
	return tool.NewRegistry().Add(r.AsTools(opts...)...)
}
