package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderMock       = "mock"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Config selects a provider and how calls to it are shaped.
type Config struct {
	Provider string
	Model    string // friendly name or raw model ID; empty uses the provider default

	AnthropicAPIKey  string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	GeminiAPIKey     string
	OpenRouterAPIKey string

	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables client-side limiting
	Burst             int
	Retry             RetryConfig
}

// RetryConfig controls retry behaviour for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
	ProviderMock:       "mock",
}

// DefaultConfig returns the mock provider with production retry settings.
func DefaultConfig() Config {
	return Config{
		Provider:          ProviderMock,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

// DiscoverProvider picks the first provider with a key in the environment
// when cfg.Provider is empty. Explicit keys on cfg win over the env.
func DiscoverProvider(cfg Config) Config {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	fill(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	fill(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	fill(&cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY")

	if cfg.Provider != "" {
		return cfg
	}
	switch {
	case cfg.GeminiAPIKey != "":
		cfg.Provider = ProviderGemini
	case cfg.OpenAIAPIKey != "":
		cfg.Provider = ProviderOpenAI
	case cfg.AnthropicAPIKey != "":
		cfg.Provider = ProviderAnthropic
	case cfg.OpenRouterAPIKey != "":
		cfg.Provider = ProviderOpenRouter
	default:
		cfg.Provider = ProviderMock
	}
	return cfg
}

// ModelOrDefault returns the configured model or the provider's default.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks the provider name and that its key is present.
func (c Config) Validate() error {
	var key string
	switch strings.ToLower(c.Provider) {
	case ProviderMock:
		return nil
	case ProviderAnthropic:
		key = c.AnthropicAPIKey
	case ProviderOpenAI:
		key = c.OpenAIAPIKey
	case ProviderGemini:
		key = c.GeminiAPIKey
	case ProviderOpenRouter:
		key = c.OpenRouterAPIKey
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%w: %s", ErrNotConfigured, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm retry attempts must be at least 1")
	}
	return nil
}
