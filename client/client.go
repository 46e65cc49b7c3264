package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/internal/provider/anthropic"
	"github.com/spetersoncode/agentry/internal/provider/google"
	"github.com/spetersoncode/agentry/internal/provider/openai"
	"github.com/spetersoncode/agentry/internal/retry"
	"github.com/spetersoncode/agentry/model"
)

// Config holds configuration for creating a unified client.
type Config struct {
	// API keys for each provider. Only configure the providers you use.
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// Model is the default model. Requests may override it with ai.WithModel,
	// using either a bare id or a "provider:id" reference.
	Model model.ChatModel

	// Retry configures retries of transient errors.
	// If nil, DefaultRetryConfig is used.
	Retry *RetryConfig

	// Events is an optional channel for receiving client events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event
}

// ErrMissingAPIKey is returned when a model is used but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider ai.Provider
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrNoModel is returned when a request names no model and no default is configured.
var ErrNoModel = fmt.Errorf("no model specified: set client.Config.Model or use ai.WithModel()")

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultOptions sets default options for every request.
// Per-request options override these defaults.
func WithDefaultOptions(opts ...ai.Option) ClientOption {
	return func(c *Client) {
		c.defaultOpts = append(c.defaultOpts, opts...)
	}
}

// WithDefaultMaxTokens sets the default max tokens for requests.
func WithDefaultMaxTokens(n int) ClientOption {
	return WithDefaultOptions(ai.WithMaxTokens(n))
}

// WithDefaultTemperature sets the default temperature for requests.
func WithDefaultTemperature(t float64) ClientOption {
	return WithDefaultOptions(ai.WithTemperature(t))
}

// WithBackend installs a gateway for a provider in place of the SDK client.
// A backend installed this way needs no API key.
func WithBackend(provider ai.Provider, gw ai.Gateway) ClientOption {
	return func(c *Client) {
		c.backends[provider] = gw
	}
}

// Client is the Model Gateway over every supported provider.
// Provider clients are lazily initialized when first needed.
type Client struct {
	keys        map[ai.Provider]string
	model       model.ChatModel
	retryConfig retry.Config
	events      chan<- Event
	defaultOpts []ai.Option

	mu       sync.Mutex
	backends map[ai.Provider]ai.Gateway
}

// New creates a unified client. It fails fast when the default model's
// provider has no API key.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	retryConfig := retry.DefaultConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}
	if retryConfig.MaxAttempts < 1 {
		return nil, fmt.Errorf("client: retry attempts must be at least 1, got %d", retryConfig.MaxAttempts)
	}

	c := &Client{
		keys: map[ai.Provider]string{
			ai.ProviderAnthropic: cfg.AnthropicAPIKey,
			ai.ProviderOpenAI:    cfg.OpenAIAPIKey,
			ai.ProviderGoogle:    cfg.GoogleAPIKey,
		},
		model:       cfg.Model,
		retryConfig: retryConfig,
		events:      cfg.Events,
		backends:    make(map[ai.Provider]ai.Gateway),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.model.IsZero() {
		if _, ok := c.backends[c.model.Provider()]; !ok && c.keys[c.model.Provider()] == "" {
			return nil, &ErrMissingAPIKey{Provider: c.model.Provider(), Model: c.model.String()}
		}
	}
	return c, nil
}

// Model returns the default model.
func (c *Client) Model() model.ChatModel {
	return c.model
}

// ResolveModel returns the model a request with the given options would use.
func (c *Client) ResolveModel(opts ...ai.Option) (model.ChatModel, error) {
	return c.resolveModel(ai.ApplyOptions(append(append([]ai.Option{}, c.defaultOpts...), opts...)...))
}

func (c *Client) resolveModel(options *ai.Options) (model.ChatModel, error) {
	if options.Model == "" {
		if c.model.IsZero() {
			return model.ChatModel{}, ErrNoModel
		}
		return c.model, nil
	}
	return model.Parse(options.Model)
}

// backend returns the gateway for a provider, initializing it if needed.
func (c *Client) backend(ctx context.Context, m model.ChatModel) (ai.Gateway, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	provider := m.Provider()
	if gw, ok := c.backends[provider]; ok {
		return gw, nil
	}

	key := c.keys[provider]
	if key == "" {
		return nil, &ErrMissingAPIKey{Provider: provider, Model: m.String()}
	}

	var gw ai.Gateway
	switch provider {
	case ai.ProviderAnthropic:
		gw = anthropic.New(key)
	case ai.ProviderOpenAI:
		gw = openai.New(key)
	case ai.ProviderGoogle:
		g, err := google.New(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google client: %w", err)
		}
		gw = g
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	c.backends[provider] = gw
	return gw, nil
}

// route merges default options, resolves the model and picks its backend.
// Providers receive the bare model id.
func (c *Client) route(ctx context.Context, opts []ai.Option) (model.ChatModel, ai.Gateway, []ai.Option, error) {
	opts = append(append([]ai.Option{}, c.defaultOpts...), opts...)
	m, err := c.resolveModel(ai.ApplyOptions(opts...))
	if err != nil {
		return model.ChatModel{}, nil, nil, err
	}
	gw, err := c.backend(ctx, m)
	if err != nil {
		return model.ChatModel{}, nil, nil, err
	}
	return m, gw, append(opts, ai.WithModel(m.String())), nil
}

// Complete sends the conversation to the model's provider and returns its turn.
// Transient errors are retried according to the client's retry configuration.
func (c *Client) Complete(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.ModelTurn, error) {
	m, gw, opts, err := c.route(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emit(c.events, Event{Type: EventRequestStart, Model: m})

	observe := func(a retry.Attempt) {
		emit(c.events, attemptEvent(m, a))
	}

	turn, err := retry.Do(ctx, c.retryConfig, observe, func(ctx context.Context) (*ai.ModelTurn, error) {
		return gw.Complete(ctx, messages, opts...)
	})
	if err != nil {
		emit(c.events, Event{Type: EventRequestError, Model: m, Duration: time.Since(start), Err: err})
		return nil, err
	}

	emit(c.events, Event{Type: EventRequestComplete, Model: m, Duration: time.Since(start), Usage: &turn.Usage})
	return turn, nil
}

var _ ai.StreamingGateway = (*Client)(nil)
