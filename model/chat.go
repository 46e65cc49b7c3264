package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	ai "github.com/spetersoncode/agentry"
)

// ChatModel represents a chat/completion model from any provider.
type ChatModel struct {
	id       string
	provider ai.Provider
	pricing  ChatPricing
}

// String returns the API identifier for this model.
func (m ChatModel) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m ChatModel) Provider() ai.Provider { return m.provider }

// Pricing returns the pricing for this model.
func (m ChatModel) Pricing() ChatPricing { return m.pricing }

// Cost returns the USD cost of the usage for this model.
// Models without known pricing cost zero.
func (m ChatModel) Cost(usage ai.Usage) decimal.Decimal {
	return CalculateCost(usage, m.pricing)
}

// Ref returns the "provider:id" reference accepted by Parse.
func (m ChatModel) Ref() string {
	if m.provider == "" {
		return m.id
	}
	return string(m.provider) + ":" + m.id
}

// IsZero returns true for the zero ChatModel.
func (m ChatModel) IsZero() bool { return m.id == "" }

// Custom creates a model that is not in the catalog. It has no pricing.
func Custom(provider ai.Provider, id string) ChatModel {
	return ChatModel{id: id, provider: provider}
}

// Anthropic Claude Models
var (
	ClaudeOpus45   = ChatModel{id: "claude-opus-4-5", provider: ai.ProviderAnthropic, pricing: perMillion("5.00", "25.00")}
	ClaudeSonnet45 = ChatModel{id: "claude-sonnet-4-5", provider: ai.ProviderAnthropic, pricing: perMillion("3.00", "15.00")}
	ClaudeHaiku45  = ChatModel{id: "claude-haiku-4-5", provider: ai.ProviderAnthropic, pricing: perMillion("1.00", "5.00")}

	// DefaultClaudeModel is the recommended default Anthropic model.
	DefaultClaudeModel = ClaudeSonnet45
)

// OpenAI GPT Models
var (
	GPT5     = ChatModel{id: "gpt-5", provider: ai.ProviderOpenAI, pricing: perMillion("1.25", "10.00")}
	GPT5Mini = ChatModel{id: "gpt-5-mini", provider: ai.ProviderOpenAI, pricing: perMillion("0.25", "2.00")}
	GPT5Nano = ChatModel{id: "gpt-5-nano", provider: ai.ProviderOpenAI, pricing: perMillion("0.05", "0.40")}
	GPT41    = ChatModel{id: "gpt-4.1", provider: ai.ProviderOpenAI, pricing: perMillion("2.00", "8.00")}
	GPT4o    = ChatModel{id: "gpt-4o", provider: ai.ProviderOpenAI, pricing: perMillion("2.50", "10.00")}

	// DefaultGPTModel is the recommended default OpenAI model.
	DefaultGPTModel = GPT5Mini
)

// Google Gemini Models
var (
	Gemini25Pro       = ChatModel{id: "gemini-2.5-pro", provider: ai.ProviderGoogle, pricing: perMillion("1.25", "10.00")}
	Gemini25Flash     = ChatModel{id: "gemini-2.5-flash", provider: ai.ProviderGoogle, pricing: perMillion("0.30", "2.50")}
	Gemini25FlashLite = ChatModel{id: "gemini-2.5-flash-lite", provider: ai.ProviderGoogle, pricing: perMillion("0.10", "0.40")}

	// DefaultGeminiModel is the recommended default Google model.
	DefaultGeminiModel = Gemini25Flash
)

var catalog = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT5, GPT5Mini, GPT5Nano, GPT41, GPT4o,
	Gemini25Pro, Gemini25Flash, Gemini25FlashLite,
}

// Lookup finds a catalog model by its API identifier.
func Lookup(id string) (ChatModel, bool) {
	for _, m := range catalog {
		if m.id == id {
			return m, true
		}
	}
	return ChatModel{}, false
}

// Parse resolves a model reference of the form "provider:id" or a bare id.
//
// Bare ids must be in the catalog or carry a recognizable prefix
// (claude-, gpt-/o, gemini-). Prefixed references outside the catalog
// resolve to a Custom model without pricing.
func Parse(ref string) (ChatModel, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ChatModel{}, fmt.Errorf("model: empty model reference")
	}

	if provider, id, ok := strings.Cut(ref, ":"); ok {
		p, err := ai.ParseProvider(provider)
		if err != nil {
			return ChatModel{}, fmt.Errorf("model: %w", err)
		}
		if m, found := Lookup(id); found && m.provider == p {
			return m, nil
		}
		return Custom(p, id), nil
	}

	if m, ok := Lookup(ref); ok {
		return m, nil
	}
	switch {
	case strings.HasPrefix(ref, "claude-"):
		return Custom(ai.ProviderAnthropic, ref), nil
	case strings.HasPrefix(ref, "gpt-"), strings.HasPrefix(ref, "o1"), strings.HasPrefix(ref, "o3"), strings.HasPrefix(ref, "o4"):
		return Custom(ai.ProviderOpenAI, ref), nil
	case strings.HasPrefix(ref, "gemini-"):
		return Custom(ai.ProviderGoogle, ref), nil
	}
	return ChatModel{}, fmt.Errorf("model: cannot infer provider for %q", ref)
}

// DefaultFor returns the recommended model for a provider.
func DefaultFor(p ai.Provider) (ChatModel, bool) {
	switch p {
	case ai.ProviderAnthropic:
		return DefaultClaudeModel, true
	case ai.ProviderOpenAI:
		return DefaultGPTModel, true
	case ai.ProviderGoogle:
		return DefaultGeminiModel, true
	}
	return ChatModel{}, false
}
