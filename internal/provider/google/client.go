package google

import (
	"context"
	"errors"

	ai "github.com/spetersoncode/agentry"
	"google.golang.org/genai"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI SDK to implement ai.Gateway.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClientOption configures the Google client.
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
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	contents, system := convertMessages(messages)
	config := buildConfig(options, system)

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, categorize(err)
	}
	return convertResponse(resp), nil
}

// CompleteStream is Complete with text deltas delivered as they arrive.
func (c *Client) CompleteStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	options := ai.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	contents, system := convertMessages(messages)
	config := buildConfig(options, system)

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

		var acc chunkAccumulator
		for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				send(ai.StreamEvent{Err: categorize(err)})
				return
			}
			if delta := acc.add(resp); delta != "" {
				if !send(ai.StreamEvent{Delta: delta}) {
					return
				}
			}
		}
		if acc.chunks == 0 {
			send(ai.StreamEvent{Err: ai.NewTransientError("google: stream returned no data", 0, nil)})
			return
		}
		send(ai.StreamEvent{Done: true, Turn: convertResponse(acc.response())})
	}()
	return ch, nil
}

// chunkAccumulator folds streamed responses into one. Parts are
// concatenated; finish reason and usage come from the latest chunk that
// carries them.
type chunkAccumulator struct {
	chunks int
	parts  []*genai.Part
	finish genai.FinishReason
	usage  *genai.GenerateContentResponseUsageMetadata
}

// add records a chunk and returns its visible text.
func (a *chunkAccumulator) add(resp *genai.GenerateContentResponse) string {
	a.chunks++
	if resp.UsageMetadata != nil {
		a.usage = resp.UsageMetadata
	}
	if len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != "" {
		a.finish = cand.FinishReason
	}
	if cand.Content == nil {
		return ""
	}
	var delta string
	for _, part := range cand.Content.Parts {
		a.parts = append(a.parts, part)
		if part.Text != "" && !part.Thought {
			delta += part.Text
		}
	}
	return delta
}

func (a *chunkAccumulator) response() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: a.finish,
			Content:      &genai.Content{Role: genai.RoleModel, Parts: a.parts},
		}},
		UsageMetadata: a.usage,
	}
}

func buildConfig(options *ai.Options, system []string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if options.System != "" {
		system = append([]string{options.System}, system...)
	}
	if len(system) > 0 {
		parts := make([]*genai.Part, len(system))
		for i, s := range system {
			parts[i] = &genai.Part{Text: s}
		}
		config.SystemInstruction = &genai.Content{Parts: parts}
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	if options.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertJSONSchema(options.ResponseSchema.Schema)
	}
	return config
}

func convertResponse(resp *genai.GenerateContentResponse) *ai.ModelTurn {
	turn := &ai.ModelTurn{}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		turn.FinishReason = string(cand.FinishReason)
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if part.Text != "" && !part.Thought {
					turn.Content += part.Text
				}
			}
			turn.ToolCalls = extractToolCalls(cand.Content.Parts)
		}
	}
	if resp.UsageMetadata != nil {
		turn.Usage = ai.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(turn.ToolCalls) > 0 {
		turn.Kind = ai.TurnToolCalls
	} else {
		turn.Kind = ai.TurnFinal
	}
	return turn
}

var _ ai.StreamingGateway = (*Client)(nil)

// categorize classifies API errors by status code. genai.APIError carries
// no headers, so there is no Retry-After hint.
func categorize(err error) error {
	var apiErr genai.APIError
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError("google: request failed", apiErr.Code, 0, err)
}
