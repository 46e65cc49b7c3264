package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/spetersoncode/agentry"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement ai.Gateway.
type Client struct {
	client *anthropic.Client
	model  string
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// Complete sends the conversation and returns the model's turn.
func (c *Client) Complete(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.ModelTurn, error) {
	options := ai.ApplyOptions(opts...)
	params, err := buildParams(c.model, messages, options)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, categorize(err)
	}
	return convertResponse(resp, options.ResponseSchema != nil), nil
}

// CompleteStream is Complete with text deltas delivered as they arrive.
// The final event carries the turn assembled from the accumulated message.
func (c *Client) CompleteStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	options := ai.ApplyOptions(opts...)
	params, err := buildParams(c.model, messages, options)
	if err != nil {
		return nil, err
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	ch := make(chan ai.StreamEvent)
	send := func(ev ai.StreamEvent) bool {
		select {
		case ch <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		defer stream.Close()

		var acc anthropic.Message
		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				send(ai.StreamEvent{Err: ai.NewPermanentError("anthropic: malformed stream event", 0, err)})
				return
			}
			if event.Type != "content_block_delta" {
				continue
			}
			if text := event.AsContentBlockDelta().Delta.AsTextDelta(); text.Type == "text_delta" && text.Text != "" {
				if !send(ai.StreamEvent{Delta: text.Text}) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			send(ai.StreamEvent{Err: categorize(err)})
			return
		}
		send(ai.StreamEvent{Done: true, Turn: convertResponse(&acc, options.ResponseSchema != nil)})
	}()
	return ch, nil
}

func buildParams(defaultModel string, messages []ai.Message, options *ai.Options) (anthropic.MessageNewParams, error) {
	model := defaultModel
	if options.Model != "" {
		model = options.Model
	}

	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := toParams(messages)
	if options.System != "" {
		system = append([]anthropic.TextBlockParam{{Text: options.System}}, system...)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}

	tools, err := convertTools(options.Tools)
	if err != nil {
		return params, err
	}

	switch {
	case options.ResponseSchema != nil:
		// Structured output is a hidden tool. With other tools present the
		// model must call some tool; alone it must call the hidden one.
		output, err := buildOutputTool(options.ResponseSchema)
		if err != nil {
			return params, err
		}
		params.Tools = append(tools, output)
		if len(options.Tools) > 0 {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
		} else {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{
				OfTool: &anthropic.ToolChoiceToolParam{Name: outputToolName},
			}
		}
	case len(options.Tools) > 0:
		params.Tools = tools
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	return params, nil
}

func convertResponse(resp *anthropic.Message, structured bool) *ai.ModelTurn {
	turn := &ai.ModelTurn{
		FinishReason: string(resp.StopReason),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	var output string
	haveOutput := false
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			turn.Content += block.Text
		case "tool_use":
			if structured && block.Name == outputToolName {
				output = string(block.Input)
				haveOutput = true
				continue
			}
			turn.ToolCalls = append(turn.ToolCalls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	if haveOutput {
		turn.Kind = ai.TurnFinal
		turn.Content = output
		turn.ToolCalls = nil
		return turn
	}
	if len(turn.ToolCalls) > 0 {
		turn.Kind = ai.TurnToolCalls
	} else {
		turn.Kind = ai.TurnFinal
	}
	return turn
}

var _ ai.StreamingGateway = (*Client)(nil)
