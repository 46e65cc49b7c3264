// Package client provides the Model Gateway: one ai.Gateway over every
// supported provider.
//
// The Client offers:
//
//   - Model-centric routing: a model reference names its provider
//   - Lazy provider initialization from the configured API keys
//   - Automatic retries with exponential backoff for transient errors
//   - Event emission over a non-blocking channel
//
// # Basic Usage
//
//	c, err := client.New(client.Config{
//	    AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
//	    Model:           model.ClaudeSonnet45,
//	})
//
//	turn, err := c.Complete(ctx, []ai.Message{ai.NewUserMessage("Hello!")})
//
// # Model References
//
// Requests may override the default with ai.WithModel. The reference is
// either "provider:id" or a bare id whose prefix identifies the provider:
//
//	c.Complete(ctx, msgs, ai.WithModel("openai:gpt-5-mini"))
//	c.Complete(ctx, msgs, ai.WithModel("gemini-2.5-flash"))
//
// A missing key is reported by New for the default model and by Complete
// for any other.
//
// # Retries
//
// Errors implementing ai.CategorizedError are retried when transient.
// Retry-After hints from the provider override the computed delay.
// Set Config.Retry to DisabledRetryConfig() for a single attempt.
package client
