package llm

import "errors"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider routes quiz generation to any OpenRouter model by
// reusing the OpenAI client against the OpenRouter endpoint.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: missing API key")
	}
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultOpenRouterBaseURL
	}
	inner, err := NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: endpoint})
	if err != nil {
		return nil, err
	}
	// Model ids here look like "anthropic/claude-sonnet-4.5" and skip the
	// OpenAI alias table.
	inner.model, inner.name = cfg.Model, "openrouter"
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
