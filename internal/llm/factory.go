package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

// NewProvider creates the preview provider. An empty apiKey falls back to
// the provider's conventional environment variable.
func NewProvider(kind config.LLMProvider, model, apiKey string, opts ...Option) (Provider, error) {
	envVar := config.APIKeyEnvVar(kind)
	if envVar == "" {
		return nil, fmt.Errorf("unsupported provider type: %s", kind)
	}
	if apiKey == "" {
		apiKey = os.Getenv(envVar)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envVar)
	}

	switch kind {
	case config.LLMGoogle:
		if model == "" {
			model = config.DefaultGemini
		}
		return NewGoogleProvider(apiKey, model, opts...), nil
	default:
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIProvider(apiKey, model, opts...), nil
	}
}
