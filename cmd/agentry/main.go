// Command agentry runs interactive demos of the agent runtime.
//
// Usage:
//
//	go run ./cmd/agentry [demo]
//
// Without a demo name a menu is shown. Configuration comes from the
// environment (see config.go); set AGENTRY_PROFILE to load a YAML profile.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/spetersoncode/agentry/agent"
	"github.com/spetersoncode/agentry/client"
	"github.com/spetersoncode/agentry/event"
)

type demo struct {
	name  string
	label string
	run   func(ctx context.Context, a *app) error
}

var demos = []demo{
	{"dice", "Dice game (plain and context-bound tools)", demoDice},
	{"weather", "Weather (parallel tool calls, streamed events)", demoWeather},
	{"structured", "Structured output with field constraints", demoStructured},
	{"judge", "LLM-as-judge output validation", demoJudge},
	{"delegation", "Coordinator delegating to specialist agents", demoDelegation},
	{"history", "Conversation history REPL", demoHistory},
	{"approval", "Human approval of file writes", demoApproval},
	{"mcp", "Tools from configured MCP servers", demoMCP},
	{"streaming", "Token streaming of a story", demoStreaming},
	{"extract", "One-shot typed extraction without an agent", demoExtract},
}

// app carries what every demo needs.
type app struct {
	cfg     *Config
	gw      *client.Client
	logger  *slog.Logger
	console *console
}

// runOptions returns the options derived from config, followed by extra.
func (a *app) runOptions(extra ...agent.Option) []agent.Option {
	opts := []agent.Option{
		agent.WithModel(a.cfg.ChatModel()),
		agent.WithMaxToolRetries(a.cfg.MaxToolRetries),
		agent.WithMaxOutputRetries(a.cfg.MaxOutputRetries),
		agent.WithMaxSteps(a.cfg.MaxSteps),
		agent.WithTimeout(a.cfg.Timeout),
		agent.WithObservers(event.NewLogObserver(a.logger)),
	}
	if a.cfg.Instructions != "" {
		opts = append(opts, agent.WithInstructions(a.cfg.Instructions))
	}
	return append(opts, extra...)
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("configuration: %v\n", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	requests := make(chan client.Event, 64)
	go client.LogEvents(logger, requests)

	gw, err := client.New(client.Config{
		AnthropicAPIKey: cfg.AnthropicKey,
		OpenAIAPIKey:    cfg.OpenAIKey,
		GoogleAPIKey:    cfg.GoogleKey,
		Model:           cfg.ChatModel(),
		Events:          requests,
	})
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("client: %v\n", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{cfg: cfg, gw: gw, logger: logger, console: newConsole(os.Stdin, os.Stdout)}
	ancli.PrintOK(fmt.Sprintf("using model %s\n", cfg.ChatModel().Ref()))

	d, ok := selectDemo(a.console, os.Args[1:])
	if !ok {
		os.Exit(2)
	}
	if err := d.run(ctx, a); err != nil {
		ancli.PrintErr(fmt.Sprintf("%s: %v\n", d.name, err))
		os.Exit(1)
	}
}

func selectDemo(c *console, args []string) (demo, bool) {
	if len(args) > 0 {
		for _, d := range demos {
			if d.name == args[0] {
				return d, true
			}
		}
		ancli.PrintErr(fmt.Sprintf("unknown demo: %s\n", args[0]))
		return demo{}, false
	}

	fmt.Println("Demos:")
	for i, d := range demos {
		fmt.Printf("  [%d] %-11s %s\n", i+1, d.name, d.label)
	}
	answer := c.prompt(fmt.Sprintf("Select demo [1-%d]: ", len(demos)))
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(demos) {
		ancli.PrintErr(fmt.Sprintf("invalid selection: %q\n", answer))
		return demo{}, false
	}
	return demos[n-1], true
}
