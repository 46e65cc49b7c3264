// Package agentry is an agent execution runtime for LLM-driven tool use.
//
// The root package holds the data model shared by every layer: messages,
// tool calls and results, model turns, request options and the categorized
// error types. Packages build on it leaves first:
//
//   - [github.com/spetersoncode/agentry/client]: the Model Gateway over Anthropic, OpenAI and Google
//   - [github.com/spetersoncode/agentry/tool]: the Tool Registry (stateless and context-bound tools)
//   - [github.com/spetersoncode/agentry/validate]: the Validation Engine and its Verdict type
//   - [github.com/spetersoncode/agentry/conversation]: the ordered, immutable message log
//   - [github.com/spetersoncode/agentry/agent]: the Run Loop, Approval Gate and Delegation Bridge
//   - [github.com/spetersoncode/agentry/judge]: sub-agent validators
//   - [github.com/spetersoncode/agentry/mcp]: remote tool servers
//
// # Basic Usage
//
//	gw, err := client.New(client.Config{
//	    AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:           model.ClaudeSonnet45,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("roll_die", "Roll a six-sided die", rollDie),
//	)
//
//	a := agent.New(gw, registry)
//	res, err := a.Run(ctx, "Roll two dice and report the sum")
//	if err != nil {
//	    log.Fatal(err) // configuration error
//	}
//	if res.Accepted() {
//	    fmt.Println(res.Output)
//	}
//
// # Gateway
//
// Any backend implementing [Gateway] can drive the runtime. A turn is either
// final or a list of tool calls; see [ModelTurn].
//
// # Errors
//
// Backend errors implement [CategorizedError]. Transient errors are retried
// with backoff inside the client, everything else ends the run.
package agentry
