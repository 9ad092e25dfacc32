package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/intervue/pkg/logger"
)

// New builds the provider named in cfg and wraps it, innermost first, with
// a per-attempt timeout, observability, the client-side rate limiter and
// retries.
func New(ctx context.Context, cfg Config, log logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if IsMock(base) {
		return WithObservability(base, log), nil
	}
	p := WithTimeout(base, cfg.Timeout)
	p = WithObservability(p, log)
	p = WithRateLimit(p, cfg.RequestsPerSecond, cfg.Burst)
	return WithRetry(p, cfg.Retry), nil
}

func newBase(ctx context.Context, cfg Config) (Provider, error) {
	model := cfg.ModelOrDefault()
	switch strings.ToLower(cfg.Provider) {
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderAnthropic:
		return newAnthropicProvider(cfg.AnthropicAPIKey, model)
	case ProviderOpenAI:
		return newOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model)
	case ProviderGemini:
		return newGeminiProvider(ctx, cfg.GeminiAPIKey, model)
	case ProviderOpenRouter:
		return newOpenRouterProvider(cfg.OpenRouterAPIKey, model)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
