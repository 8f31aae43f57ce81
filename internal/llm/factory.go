package llm

import (
	"context"
	"fmt"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// constructors builds the base provider for each supported name.
var constructors = map[string]func(context.Context, Config) (Provider, error){
	"anthropic": func(_ context.Context, c Config) (Provider, error) { return NewAnthropicProvider(c.Anthropic) },
	"openai":    func(_ context.Context, c Config) (Provider, error) { return NewOpenAIProvider(c.OpenAI) },
	"openrouter": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenRouterProvider(c.OpenRouter)
	},
	"gemini": func(ctx context.Context, c Config) (Provider, error) { return NewGeminiProvider(ctx, c.Gemini) },
}

// NewProvider validates cfg and returns the configured provider behind
// the timeout, retry and logging layers, outermost first. The mock is
// returned bare. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, logger logging.Logger, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	build, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	base, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider %s: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, logger, eventRepo)
	p = WithRetry(p, cfg.Retry, logger)
	return WithTimeout(p, cfg.Timeout), nil
}

// NewProviderFromEnv is NewProvider over ConfigFromEnv.
func NewProviderFromEnv(ctx context.Context, logger logging.Logger, eventRepo store.EventRepo) (Provider, error) {
	return NewProvider(ctx, ConfigFromEnv(), logger, eventRepo)
}
