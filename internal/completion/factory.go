package completion

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Settings holds the per-backend configuration New picks from
type Settings struct {
	Perplexity PerplexityConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
}

// New returns the backend registered under provider
func New(provider string, s Settings, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderPerplexity, "":
		return NewPerplexityClient(s.Perplexity, logger), nil
	case ProviderOpenAI, "deepseek":
		return NewOpenAIClient(s.OpenAI, logger), nil
	case ProviderGemini:
		return NewGeminiClient(s.Gemini, logger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}

// HasCredentials reports whether the named provider has an API key configured
func (s Settings) HasCredentials(provider string) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderPerplexity, "":
		return s.Perplexity.APIKey != ""
	case ProviderOpenAI, "deepseek":
		return s.OpenAI.APIKey != ""
	case ProviderGemini:
		return s.Gemini.APIKey != ""
	default:
		return false
	}
}
