package model

import (
	"testing"

	"github.com/shopspring/decimal"
	ai "github.com/spetersoncode/agentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	pricing := perMillion("1.00", "2.00")

	t.Run("standard usage", func(t *testing.T) {
		cost := CalculateCost(ai.Usage{InputTokens: 1000, OutputTokens: 500}, pricing)
		assert.True(t, cost.Equal(decimal.RequireFromString("0.002")), cost.String())
	})

	t.Run("million tokens", func(t *testing.T) {
		cost := CalculateCost(ai.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, pricing)
		assert.True(t, cost.Equal(decimal.NewFromInt(3)))
	})

	t.Run("zero usage", func(t *testing.T) {
		assert.True(t, CalculateCost(ai.Usage{}, pricing).IsZero())
	})
}

func TestChatModelCost(t *testing.T) {
	cost := ClaudeSonnet45.Cost(ai.Usage{InputTokens: 10000, OutputTokens: 5000})
	assert.True(t, cost.Equal(decimal.RequireFromString("0.105")), cost.String())

	assert.True(t, Custom(ai.ProviderOpenAI, "ft:custom").Cost(ai.Usage{InputTokens: 100}).IsZero())
}

func TestParse(t *testing.T) {
	tests := []struct {
		ref      string
		id       string
		provider ai.Provider
		priced   bool
	}{
		{"claude-sonnet-4-5", "claude-sonnet-4-5", ai.ProviderAnthropic, true},
		{"anthropic:claude-haiku-4-5", "claude-haiku-4-5", ai.ProviderAnthropic, true},
		{"openai:gpt-4o", "gpt-4o", ai.ProviderOpenAI, true},
		{"google-gla:gemini-2.5-flash", "gemini-2.5-flash", ai.ProviderGoogle, true},
		{"claude-3-7-sonnet-latest", "claude-3-7-sonnet-latest", ai.ProviderAnthropic, false},
		{"o3-mini", "o3-mini", ai.ProviderOpenAI, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			m, err := Parse(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.id, m.String())
			assert.Equal(t, tt.provider, m.Provider())
			assert.Equal(t, tt.priced, !m.Pricing().IsZero())
		})
	}

	t.Run("errors", func(t *testing.T) {
		_, err := Parse("")
		assert.Error(t, err)
		_, err = Parse("mistral:large")
		assert.Error(t, err)
		_, err = Parse("llama-3")
		assert.Error(t, err)
	})
}

func TestRef(t *testing.T) {
	assert.Equal(t, "openai:gpt-5-mini", GPT5Mini.Ref())

	m, err := Parse(ClaudeHaiku45.Ref())
	require.NoError(t, err)
	assert.Equal(t, ClaudeHaiku45, m)

	assert.Equal(t, "custom-id", ChatModel{id: "custom-id"}.Ref())
}

func TestDefaultFor(t *testing.T) {
	for _, p := range ai.Providers {
		m, ok := DefaultFor(p)
		require.True(t, ok, p)
		assert.Equal(t, p, m.Provider())
	}
	_, ok := DefaultFor(ai.Provider("vertex"))
	assert.False(t, ok)
}
