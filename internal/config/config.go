// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loaders accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/internal/adapters/repository"
	"github.com/okian/intervue/internal/domain/skill"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory observation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of observation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many observation ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver selects memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`
	DatabaseURL string `koanf:"database_url"`

	// Consistency is last_write_wins or compare_and_swap.
	Consistency   string `koanf:"consistency"`
	CASMaxRetries int    `koanf:"cas_max_retries"`

	// SkillValidation is strict or permissive.
	SkillValidation string `koanf:"skill_validation"`

	// TaxonomyFile replaces the built-in domains when set.
	TaxonomyFile string `koanf:"taxonomy_file"`

	// LLMProvider is anthropic, openai, gemini, openrouter or mock. Empty
	// picks the first provider whose API key is in the environment.
	LLMProvider          string  `koanf:"llm_provider"`
	LLMModel             string  `koanf:"llm_model"`
	AnthropicAPIKey      string  `koanf:"anthropic_api_key"`
	OpenAIAPIKey         string  `koanf:"openai_api_key"`
	OpenAIBaseURL        string  `koanf:"openai_base_url"`
	GeminiAPIKey         string  `koanf:"gemini_api_key"`
	OpenRouterAPIKey     string  `koanf:"openrouter_api_key"`
	LLMTimeoutMS         int     `koanf:"llm_timeout_ms"`
	LLMMaxAttempts       int     `koanf:"llm_max_attempts"`
	LLMRequestsPerSecond float64 `koanf:"llm_requests_per_second"`
	LLMBurst             int     `koanf:"llm_burst"`

	// AMQPURL enables progress notifications when set.
	AMQPURL      string `koanf:"amqp_url"`
	AMQPExchange string `koanf:"amqp_exchange"`

	// MaxUploadBytes caps /parse-document uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		StoreDriver:          "memory",
		SQLitePath:           "intervue.db",
		Consistency:          string(repository.LastWriteWins),
		CASMaxRetries:        5,
		SkillValidation:      string(skill.Strict),
		LLMTimeoutMS:         30_000,
		LLMMaxAttempts:       3,
		LLMRequestsPerSecond: 2,
		LLMBurst:             4,
		AMQPExchange:         "progress_updates",
		MaxUploadBytes:       10 << 20,
		MaxBodyBytes:         1 << 20,
		ShutdownTimeoutMS:    30_000,
	}
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0, c.WorkerCount <= 0, c.DedupeSize <= 0:
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	case c.CASMaxRetries < 0:
		return fmt.Errorf("%w: cas_max_retries must not be negative", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0, c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes and max_body_bytes must be positive", ErrInvalidConfig)
	case c.LLMMaxAttempts < 1:
		return fmt.Errorf("%w: llm_max_attempts must be at least 1", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.StoreDriver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("%w: postgres store needs database_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if _, err := repository.ParseConsistency(c.Consistency); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := skill.ParseMode(c.SkillValidation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LLMProvider) {
	case "", llm.ProviderMock, llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter:
	default:
		return fmt.Errorf("%w: llm_provider %q", ErrInvalidConfig, c.LLMProvider)
	}
	return nil
}

// LLM returns the provider settings, discovering the provider from API-key
// environment variables when none is configured.
func (c *Config) LLM() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = strings.ToLower(c.LLMProvider)
	out.Model = c.LLMModel
	out.AnthropicAPIKey = c.AnthropicAPIKey
	out.OpenAIAPIKey = c.OpenAIAPIKey
	out.OpenAIBaseURL = c.OpenAIBaseURL
	out.GeminiAPIKey = c.GeminiAPIKey
	out.OpenRouterAPIKey = c.OpenRouterAPIKey
	if c.LLMTimeoutMS > 0 {
		out.Timeout = time.Duration(c.LLMTimeoutMS) * time.Millisecond
	}
	out.Retry.MaxAttempts = c.LLMMaxAttempts
	out.RequestsPerSecond = c.LLMRequestsPerSecond
	out.Burst = c.LLMBurst
	return llm.DiscoverProvider(out)
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
