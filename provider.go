package agentry

import (
	"fmt"
	"strings"
)

// Provider identifies a model backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Providers lists the supported backends in preference order.
var Providers = []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle}

func (p Provider) String() string { return string(p) }

// KeyEnv names the environment variable conventionally holding the
// provider's API key.
func (p Provider) KeyEnv() string {
	return strings.ToUpper(string(p)) + "_API_KEY"
}

// ParseProvider resolves a provider name. Aliases used by other agent
// frameworks ("gemini", "google-gla") map to ProviderGoogle.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "openai":
		return ProviderOpenAI, nil
	case "google", "google-gla", "gemini":
		return ProviderGoogle, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}
