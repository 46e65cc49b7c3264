// Package google adapts the Gemini API to ai.StreamingGateway.
//
// Gemini matches function responses to calls by name rather than id, so the
// adapter tracks call names while converting the log.
package google
