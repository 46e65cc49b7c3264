// Package agent runs goals to a validated result.
//
// A run is a state machine over one conversation:
//
//	AwaitingModel -> DispatchingTools -> AwaitingModel ...
//	AwaitingModel -> Validating -> Accepted | Retrying | Failed
//
// The model either calls tools or produces a final candidate. Tool calls
// are resolved against the registry, passed through the approval gate when
// gated, invoked (concurrently by default) and answered with one tool
// message whose results follow the request order. Final candidates go
// through the validators; a rejection is fed back as a user message and the
// model tries again.
//
// # Basic Usage
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("roll_die", "Roll a die", rollDie),
//	)
//	a := agent.New(gw, registry, agent.WithInstructions("You are a dice game host."))
//
//	result, err := a.Run(ctx, "Roll two dice and tell me the sum")
//	if err != nil {
//	    return err // *agent.ConfigError
//	}
//	if !result.Accepted() {
//	    return result.Err()
//	}
//	fmt.Println(result.Output)
//
// # Retry Budgets
//
// Two counters bound a run. MaxToolRetries limits consecutive tool rounds
// that contain an error result. MaxOutputRetries limits rejected final
// candidates. They are independent: a tool failure never spends output
// retries and vice versa. MaxSteps caps the total number of model turns.
//
// # Structured Output
//
//	type CityInfo struct {
//	    City    string `json:"city"`
//	    Country string `json:"country"`
//	}
//
//	result, _ := a.Run(ctx, "Where were the 2012 Olympics?",
//	    agent.WithOutput[CityInfo]("city information"),
//	)
//	info, err := agent.Output[CityInfo](result)
//
// # Human-in-the-Loop Approval
//
// Tools built with tool.WithSideEffects, or named in WithApprovalRequired,
// wait for the approver. If nothing is marked, every call waits.
//
//	a.Run(ctx, goal, agent.WithApprover(func(ctx context.Context, call ai.ToolCall) agent.Decision {
//	    if call.Name == "delete_file" {
//	        return agent.Reject("deleting files is not allowed")
//	    }
//	    return agent.Approve()
//	}))
//
// ApprovalBroker adapts approvals that arrive from another goroutine.
//
// # Delegation
//
// NewTool and NewToolFunc expose an Agent as a tool. The sub-agent runs its
// own loop with the caller's context and deps; its failure is returned to
// the caller as a recoverable tool error.
//
// # Continuing a Conversation
//
//	first, _ := a.Run(ctx, "My name is Ada.")
//	second, _ := a.Run(ctx, "What is my name?", agent.WithHistory(first.NewMessages()...))
package agent
