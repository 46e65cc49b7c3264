// Package anthropic implements [agentry.StreamingGateway] on the Anthropic
// Messages API.
//
// Structured output is requested through a hidden tool whose name is
// reserved. When the request also carries a tool catalog the model is forced
// to call some tool, so every turn is either tool calls or the structured
// answer.
package anthropic
