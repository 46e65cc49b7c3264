package agentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{"anthropic", ProviderAnthropic},
		{"Claude", ProviderAnthropic},
		{"openai", ProviderOpenAI},
		{" gemini ", ProviderGoogle},
		{"google-gla", ProviderGoogle},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseProvider("vertex")
	assert.EqualError(t, err, `unknown provider "vertex"`)
}

func TestKeyEnv(t *testing.T) {
	assert.Equal(t, "ANTHROPIC_API_KEY", ProviderAnthropic.KeyEnv())
	assert.Equal(t, "OPENAI_API_KEY", ProviderOpenAI.KeyEnv())
	assert.Equal(t, "GOOGLE_API_KEY", ProviderGoogle.KeyEnv())
}
