// Package openai adapts the OpenAI chat completions API to ai.StreamingGateway.
package openai
