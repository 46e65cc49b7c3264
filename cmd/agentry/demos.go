package main

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/agent"
	"github.com/spetersoncode/agentry/client"
	"github.com/spetersoncode/agentry/conversation"
	"github.com/spetersoncode/agentry/event"
	"github.com/spetersoncode/agentry/judge"
	"github.com/spetersoncode/agentry/mcp"
	"github.com/spetersoncode/agentry/tool"
	"github.com/spetersoncode/agentry/validate"
)

// Dice

type rollArgs struct {
	Sides int `json:"sides,omitempty" jsonschema:"description=Number of faces on the die,minimum=2,default=6"`
}

type noArgs struct{}

type player struct {
	Name string
}

func rollDie(ctx context.Context, args rollArgs) (string, error) {
	sides := args.Sides
	if sides == 0 {
		sides = 6
	}
	return fmt.Sprint(rand.IntN(sides) + 1), nil
}

func playerName(ctx context.Context, p player, _ noArgs) (string, error) {
	return p.Name, nil
}

func demoDice(ctx context.Context, a *app) error {
	registry := tool.NewRegistry().Add(
		tool.Func("roll_die", "Roll a die and return the number", rollDie),
		tool.WithDeps("get_player_name", "Get the player's name", playerName),
	)
	dice := agent.New(a.gw, registry, a.runOptions(
		agent.WithInstructions("You're a dice game. Roll the die and see if the number matches the user's guess. "+
			"If so, tell them they're a winner. Use the player's name in the response."),
	)...)

	name := a.console.prompt("Your name: ")
	if name == "" {
		name = "Anne"
	}
	guess := a.console.prompt("Your guess (1-6): ")

	res, err := dice.Run(ctx, "My guess is "+guess, agent.WithDeps(player{Name: name}))
	if err != nil {
		return err
	}
	report(res)
	return nil
}

// Weather

type locationArgs struct {
	Description string `json:"location_description" jsonschema:"description=A description of a location"`
}

type coordsArgs struct {
	Lat float64 `json:"lat" jsonschema:"description=Latitude"`
	Lng float64 `json:"lng" jsonschema:"description=Longitude"`
}

// getLatLng returns stable fake coordinates for a place name.
func getLatLng(ctx context.Context, args locationArgs) (string, error) {
	if strings.TrimSpace(args.Description) == "" {
		return "", tool.NewToolError("location_description is empty, ask for a place name")
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(args.Description)))
	sum := h.Sum32()
	lat := float64(sum%18000)/100 - 90
	lng := float64((sum/18000)%36000)/100 - 180
	return fmt.Sprintf(`{"lat": %.2f, "lng": %.2f}`, lat, lng), nil
}

func getWeather(ctx context.Context, args coordsArgs) (string, error) {
	conditions := []string{"Sunny", "Cloudy", "Rainy", "Windy", "Snowy"}
	idx := int(args.Lat*7+args.Lng*3) % len(conditions)
	if idx < 0 {
		idx = -idx
	}
	temp := 30 - int(args.Lat)/3
	if temp < -30 {
		temp = -30
	}
	return fmt.Sprintf(`{"temperature": "%d°C", "description": "%s"}`, temp, conditions[idx]), nil
}

func demoWeather(ctx context.Context, a *app) error {
	registry := tool.NewRegistry().Add(
		tool.Func("get_lat_lng", "Get the latitude and longitude of a location", getLatLng),
		tool.Func("get_weather", "Get the weather at a location", getWeather),
	)
	weather := agent.New(a.gw, registry, a.runOptions(
		agent.WithInstructions("Be concise, reply with one sentence. Look up every location in parallel."),
	)...)

	goal := a.console.prompt("Question [What is the weather like in London and in Wiltshire?]: ")
	if goal == "" {
		goal = "What is the weather like in London and in Wiltshire?"
	}

	stream := weather.RunStream(ctx, goal)
	for e := range stream.Events() {
		switch e.Type {
		case event.ToolDispatched:
			ancli.PrintOK(fmt.Sprintf("→ %s %s\n", e.ToolCall.Name, e.ToolCall.Arguments))
		case event.ToolResult:
			ancli.PrintOK(fmt.Sprintf("← %s %s\n", e.ToolResult.Name, e.ToolResult.Content))
		case event.Retry:
			ancli.PrintWarn(fmt.Sprintf("retrying: %s\n", e.Feedback))
		}
	}
	res, err := stream.Wait()
	if err != nil {
		return err
	}
	report(res)
	return nil
}

// Structured output

type cityLocation struct {
	City    string `json:"city" jsonschema:"minLength=1"`
	Country string `json:"country" jsonschema:"minLength=1"`
	Year    int    `json:"year" jsonschema:"minimum=1896,maximum=2100"`
}

func demoStructured(ctx context.Context, a *app) error {
	locator := agent.New(a.gw, nil, a.runOptions(
		agent.WithOutput[cityLocation]("Where an event took place"),
		agent.WithMaxOutputRetries(max(a.cfg.MaxOutputRetries, 2)),
	)...)

	goal := a.console.prompt("Question [Where were the olympics held in 2012?]: ")
	if goal == "" {
		goal = "Where were the olympics held in 2012?"
	}

	res, err := locator.Run(ctx, goal)
	if err != nil {
		return err
	}
	report(res)
	if loc, err := agent.Output[cityLocation](res); err == nil {
		ancli.PrintOK(fmt.Sprintf("city=%s country=%s year=%d\n", loc.City, loc.Country, loc.Year))
	}
	return nil
}

// Judge

type postReview struct {
	Approved bool   `json:"approved" jsonschema:"description=Whether the post meets every criterion"`
	Feedback string `json:"feedback" jsonschema:"description=What to change when not approved"`
}

func (r postReview) Approve() bool  { return r.Approved }
func (r postReview) Reason() string { return r.Feedback }

func demoJudge(ctx context.Context, a *app) error {
	reviewer := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("You review social media posts strictly."),
	)...)

	writer := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("You write short social media posts."),
		agent.WithValidators(
			validate.NotEmpty(),
			judge.New[postReview](reviewer,
				judge.WithCriteria("under 280 characters, professional tone, no hashtags, mentions the product by name"),
				judge.WithFeedback(func(reason string) string { return "Post rejected. " + reason }),
			),
		),
		agent.WithMaxOutputRetries(max(a.cfg.MaxOutputRetries, 5)),
	)...)

	topic := a.console.prompt("Topic [launch of the Agentry runtime]: ")
	if topic == "" {
		topic = "launch of the Agentry runtime"
	}

	res, err := writer.Run(ctx, "Write a post about the "+topic)
	if err != nil {
		return err
	}
	for _, msg := range res.Messages() {
		if msg.Feedback {
			ancli.PrintWarn(msg.Content + "\n")
		}
	}
	report(res)
	return nil
}

// Delegation

type researchArgs struct {
	Topic string `json:"topic" jsonschema:"description=What to research"`
}

func demoDelegation(ctx context.Context, a *app) error {
	researcher := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("You are a researcher. Reply with five concise, factual bullet points."),
	)...)
	writer := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("You are a writer. Turn notes into one clear paragraph."),
	)...)

	specialists := agent.NewSpecialistRegistry().
		Register("writer", "Turns research notes into a polished paragraph", writer,
			agent.WithCapabilities("writing"))

	registry := specialists.Registry(agent.WithToolMaxSteps(5))
	registry.MustRegister(agent.NewToolFunc("research", researcher,
		"Research a topic and return bullet points",
		func(args researchArgs) string { return "Research: " + args.Topic },
		agent.WithToolMaxSteps(5),
	))

	coordinator := agent.New(a.gw, registry, a.runOptions(
		agent.WithInstructions("You coordinate specialists. Use research first, then give the notes to the writer. "+
			"Return the writer's paragraph."),
	)...)

	topic := a.console.prompt("Topic [the history of the bicycle]: ")
	if topic == "" {
		topic = "the history of the bicycle"
	}

	res, err := coordinator.Run(ctx, "Produce a paragraph about "+topic)
	if err != nil {
		return err
	}
	report(res)
	return nil
}

// History

func demoHistory(ctx context.Context, a *app) error {
	assistant := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("Be a helpful assistant. Keep answers short."),
	)...)
	archive := conversation.NewArchive()

	session := "default"
	var history []ai.Message

	fmt.Println("Commands: /session <name>, /sessions, /reset, /quit")
	for {
		line := a.console.prompt(fmt.Sprintf("[%s]> ", session))
		switch {
		case line == "" || line == "/quit":
			return nil
		case line == "/reset":
			history = nil
			if err := archive.Delete(ctx, session); err != nil {
				return err
			}
			ancli.PrintOK("history cleared\n")
			continue
		case line == "/sessions":
			keys, err := archive.Sessions(ctx)
			if err != nil {
				return err
			}
			ancli.PrintOK(fmt.Sprintf("sessions: %s\n", strings.Join(keys, ", ")))
			continue
		case strings.HasPrefix(line, "/session "):
			session = strings.TrimSpace(strings.TrimPrefix(line, "/session "))
			history = nil
			if s, err := archive.Load(ctx, session); err == nil {
				history = s.Messages()
				ancli.PrintOK(fmt.Sprintf("resumed %s with %d messages\n", session, s.Len()))
			}
			continue
		}

		res, err := assistant.Run(ctx, line, agent.WithHistory(history...))
		if err != nil {
			return err
		}
		if !res.Accepted() {
			ancli.PrintErr(fmt.Sprintf("%v\n", res.Err()))
			continue
		}
		fmt.Println(res.Output)

		history = res.Messages()
		if err := archive.Save(ctx, session, res.Transcript); err != nil {
			return err
		}
		a.logger.Debug("turn stored", "session", session, "new_messages", len(res.NewMessages()))
	}
}

// Approval

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"description=File path relative to the sandbox"`
	Content string `json:"content" jsonschema:"description=Full file content"`
}

// newWriteFileTool writes inside root. It always requires approval.
func newWriteFileTool(root string) tool.Spec {
	return tool.Func("write_file", "Write a file, replacing any existing content",
		func(ctx context.Context, args writeFileArgs) (string, error) {
			path := filepath.Join(root, filepath.Clean("/"+args.Path))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return "", tool.NewToolError("cannot create directory: %v", err)
			}
			if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
				return "", tool.NewToolError("cannot write %s: %v", args.Path, err)
			}
			return fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path), nil
		},
		tool.WithSideEffects(),
	)
}

func demoApproval(ctx context.Context, a *app) error {
	root, err := os.MkdirTemp("", "agentry-approval-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(root)

	registry := tool.NewRegistry().Add(tool.FileTools(tool.WithBasePath(root))...)
	registry.MustRegister(newWriteFileTool(root))

	opts := []agent.Option{
		agent.WithInstructions("You manage files in a sandbox. Writing needs operator approval; " +
			"if a write is rejected, explain and stop."),
		agent.WithApprover(a.console.approver()),
	}
	if a.cfg.ApprovalTimeout > 0 {
		opts = append(opts, agent.WithApprovalTimeout(a.cfg.ApprovalTimeout))
	}
	files := agent.New(a.gw, registry, a.runOptions(opts...)...)

	goal := a.console.prompt("Task [Create notes.txt containing a haiku about Go]: ")
	if goal == "" {
		goal = "Create notes.txt containing a haiku about Go"
	}

	res, err := files.Run(ctx, goal)
	if err != nil {
		return err
	}
	report(res)
	return nil
}

// MCP

func demoMCP(ctx context.Context, a *app) error {
	if len(a.cfg.MCPServers) == 0 {
		ancli.PrintWarn("no mcp_servers configured, starting ./cmd/fsmcp on the working directory\n")
		a.cfg.MCPServers = []MCPServerConfig{{
			Name:    "fs",
			Command: "go",
			Args:    []string{"run", "./cmd/fsmcp", "."},
		}}
	}

	registry := tool.NewRegistry()
	for _, s := range a.cfg.MCPServers {
		ts, err := connectServer(ctx, s)
		if err != nil {
			return err
		}
		defer ts.Close()

		if err := ts.RegisterTo(registry); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		ancli.PrintOK(fmt.Sprintf("%s: %s\n", s.Name, strings.Join(ts.Names(), ", ")))
	}

	remote := agent.New(a.gw, registry, a.runOptions(
		agent.WithApprover(a.console.approver()),
		agent.WithHandlerTimeout(a.cfg.Timeout),
	)...)

	goal := a.console.prompt("Task [Summarize the README in this directory]: ")
	if goal == "" {
		goal = "Summarize the README in this directory"
	}

	res, err := remote.Run(ctx, goal)
	if err != nil {
		return err
	}
	report(res)
	return nil
}

func connectServer(ctx context.Context, s MCPServerConfig) (*mcp.Toolset, error) {
	opts := []mcp.ConnectOption{mcp.WithSideEffectTools(s.SideEffects...)}
	if s.Timeout > 0 {
		opts = append(opts, mcp.WithConnectTimeout(s.Timeout))
	}

	var ts *mcp.Toolset
	var err error
	if s.URL != "" {
		ts, err = mcp.ConnectSSE(ctx, s.URL, opts...)
	} else {
		ts, err = mcp.Connect(ctx, mcp.StdioServer{Command: s.Command, Args: s.Args, Env: s.Env}, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return ts, nil
}

// Streaming

func demoStreaming(ctx context.Context, a *app) error {
	storyteller := agent.New(a.gw, nil, a.runOptions(
		agent.WithInstructions("You're a creative storyteller. Write engaging, descriptive stories."),
		agent.WithStreaming(true),
	)...)

	goal := a.console.prompt("Prompt [Write a short story about a robot learning to paint.]: ")
	if goal == "" {
		goal = "Write a short story about a robot learning to paint."
	}

	// Printed from an observer rather than RunStream, whose buffer may drop events.
	printer := event.ObserverFunc(func(e event.Event) {
		if e.Type == event.TextDelta {
			fmt.Print(e.Delta)
		}
	})
	res, err := storyteller.Run(ctx, goal, agent.WithObservers(printer))
	if err != nil {
		return err
	}
	fmt.Println()
	if !res.Accepted() {
		report(res)
		return nil
	}
	ancli.PrintOK(fmt.Sprintf("stream complete after %d steps, %d tokens out\n", res.Steps, res.Usage.OutputTokens))
	return nil
}

// One-shot extraction

type bookInfo struct {
	Title  string `json:"title" jsonschema:"minLength=1"`
	Author string `json:"author" jsonschema:"minLength=1"`
	Year   int    `json:"year" jsonschema:"description=Year of first publication"`
}

func demoExtract(ctx context.Context, a *app) error {
	text := a.console.prompt("Text [I just finished Nineteen Eighty-Four, Orwell's 1949 novel.]: ")
	if text == "" {
		text = "I just finished Nineteen Eighty-Four, Orwell's 1949 novel."
	}

	book, err := client.CompleteTyped[bookInfo](ctx, a.gw,
		[]ai.Message{ai.NewUserMessage("Extract the book mentioned in this text:\n\n" + text)},
		ai.WithModel(a.cfg.ChatModel().Ref()),
	)
	var decodeErr *client.DecodeError
	if errors.As(err, &decodeErr) {
		ancli.PrintWarn(fmt.Sprintf("reply did not fit: %v\n", decodeErr.Err))
		if decodeErr.Raw != "" {
			fmt.Println(decodeErr.Raw)
		}
		return nil
	}
	if err != nil {
		return err
	}
	ancli.PrintOK(fmt.Sprintf("title=%q author=%q year=%d\n", book.Title, book.Author, book.Year))
	return nil
}
