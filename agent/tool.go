package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/tool"
)

// ToolArgs is the default argument type for agent tools.
type ToolArgs struct {
	Input string `json:"input" jsonschema:"description=The task for the agent"`
}

// ToolOption configures an agent tool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description  string
	agentOptions []Option
	specOptions  []tool.SpecOption
}

// WithToolDescription sets a custom description for the agent tool.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) {
		c.description = desc
	}
}

// WithToolAgentOptions sets options for every sub-agent run. They are
// applied after the parent's deps, so WithDeps here overrides them.
func WithToolAgentOptions(opts ...Option) ToolOption {
	return func(c *toolConfig) {
		c.agentOptions = append(c.agentOptions, opts...)
	}
}

// WithToolMaxSteps sets the maximum steps for the sub-agent.
func WithToolMaxSteps(n int) ToolOption {
	return WithToolAgentOptions(WithMaxSteps(n))
}

// WithToolSpecOptions passes options to the generated tool spec,
// for example tool.WithSideEffects.
func WithToolSpecOptions(opts ...tool.SpecOption) ToolOption {
	return func(c *toolConfig) {
		c.specOptions = append(c.specOptions, opts...)
	}
}

// NewTool wraps an agent as a context-bound tool taking {"input": string}.
// Each call runs a fresh sub-agent loop on the input. The sub-agent's
// messages never enter the caller's transcript; only its output does.
//
//	researcher := agent.New(gw, researchTools, agent.WithInstructions("You research topics."))
//	registry.Add(agent.NewTool("research", researcher,
//	    agent.WithToolDescription("Delegate research to a specialist"),
//	))
func NewTool(name string, a *Agent, opts ...ToolOption) tool.Spec {
	return NewToolFunc(name, a, "", func(args ToolArgs) string {
		return args.Input
	}, opts...)
}

// NewToolFunc wraps an agent as a tool with typed arguments. toGoal turns
// the arguments into the sub-agent's goal.
//
//	type ResearchArgs struct {
//	    Topic string `json:"topic" jsonschema:"description=Research topic"`
//	}
//
//	registry.Add(agent.NewToolFunc("research", researcher, "Research a topic",
//	    func(args ResearchArgs) string {
//	        return "Research " + args.Topic
//	    },
//	))
func NewToolFunc[T any](name string, a *Agent, description string, toGoal func(args T) string, opts ...ToolOption) tool.Spec {
	cfg := &toolConfig{description: description}
	if cfg.description == "" {
		cfg.description = fmt.Sprintf("Invoke the %s agent", name)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := func(ctx context.Context, deps any, call ai.ToolCall) (string, error) {
		var args T
		raw := strings.TrimSpace(call.Arguments)
		if raw == "" {
			raw = "{}"
		}
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", tool.NewToolError("invalid arguments: %v", err)
		}

		runOpts := append([]Option{WithDeps(deps)}, cfg.agentOptions...)
		result, err := a.Run(ctx, toGoal(args), runOpts...)
		if err != nil {
			return "", tool.NewFatalError("sub-agent "+name+" is misconfigured", err)
		}
		if !result.Accepted() {
			f := result.Failure
			msg := fmt.Sprintf("sub-agent %s failed (%s)", name, f.Kind)
			if f.Feedback != "" {
				msg += ": " + f.Feedback
			} else if f.Err != nil {
				msg += ": " + f.Err.Error()
			}
			return "", &tool.ToolError{Message: msg, Err: f}
		}
		return result.Output, nil
	}

	return tool.WithBound(name, cfg.description, ai.MustSchemaFor[T](), handler,
		append([]tool.SpecOption{tool.WithOutputType("text")}, cfg.specOptions...)...)
}
