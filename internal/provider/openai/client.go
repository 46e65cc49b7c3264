package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/spetersoncode/agentry"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "gpt-5"

// Client wraps the OpenAI SDK to implement ai.Gateway.
type Client struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the OpenAI client.
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

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, categorize(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ai.NewPermanentError("openai: response has no choices", 0, nil)
	}
	return convertResponse(resp), nil
}

// CompleteStream is Complete with content deltas delivered as they arrive.
// Usage is requested on the final chunk.
func (c *Client) CompleteStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	options := ai.ApplyOptions(opts...)
	params, err := buildParams(c.model, messages, options)
	if err != nil {
		return nil, err
	}
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
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

		var acc openai.ChatCompletionAccumulator
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !send(ai.StreamEvent{Delta: chunk.Choices[0].Delta.Content}) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			send(ai.StreamEvent{Err: categorize(err)})
			return
		}
		if len(acc.Choices) == 0 {
			send(ai.StreamEvent{Err: ai.NewPermanentError("openai: stream has no choices", 0, nil)})
			return
		}
		send(ai.StreamEvent{Done: true, Turn: convertResponse(&acc.ChatCompletion)})
	}()
	return ch, nil
}

func buildParams(defaultModel string, messages []ai.Message, options *ai.Options) (openai.ChatCompletionNewParams, error) {
	model := defaultModel
	if options.Model != "" {
		model = options.Model
	}

	msgs := toChatMessages(messages)
	if options.System != "" {
		msgs = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(options.System)}, msgs...)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		tools, err := toChatTools(options.Tools)
		if err != nil {
			return params, err
		}
		params.Tools = tools
		if options.ToolChoice != "" {
			params.ToolChoice = toChatToolChoice(options.ToolChoice)
		}
	}
	if options.ResponseSchema != nil {
		format, err := buildSchemaFormat(options.ResponseSchema)
		if err != nil {
			return params, err
		}
		params.ResponseFormat = format
	}
	return params, nil
}

func convertResponse(resp *openai.ChatCompletion) *ai.ModelTurn {
	choice := resp.Choices[0]
	turn := &ai.ModelTurn{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ToolCalls: fromChatToolCalls(choice.Message),
	}
	if len(turn.ToolCalls) > 0 {
		turn.Kind = ai.TurnToolCalls
	} else {
		turn.Kind = ai.TurnFinal
	}
	return turn
}

var _ ai.StreamingGateway = (*Client)(nil)
