package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/intervue/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreSchema = &Schema{
	Name: "test_score",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "number"},
		},
		"required": []string{"score"},
	},
}

func fastRetry(p Provider, attempts int) *retryProvider {
	r := WithRetry(p, RetryConfig{MaxAttempts: attempts, InitialWait: time.Millisecond}).(*retryProvider)
	r.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return r
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	mock := NewMockProvider().
		AddError(&ErrProviderUnavailable{Err: errors.New("down")}).
		AddResponse(`{"score": 80}`)

	resp, err := fastRetry(mock, 3).Generate(context.Background(), Request{Schema: scoreSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 80}`, string(resp.Content))
	assert.Len(t, mock.Calls(), 2)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider()
	for i := 0; i < 5; i++ {
		mock.AddError(&ErrRateLimit{Err: errors.New("429")})
	}
	_, err := fastRetry(mock, 3).Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Len(t, mock.Calls(), 3)
}

func TestRetryInvalidResponseOnlyOnce(t *testing.T) {
	mock := NewMockProvider().
		AddResponse(`{"nope": 1}`).
		AddResponse(`{"nope": 2}`).
		AddResponse(`{"score": 1}`)

	_, err := fastRetry(mock, 5).Generate(context.Background(), Request{Schema: scoreSchema})
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
	assert.Len(t, mock.Calls(), 2)
}

func TestRetryDoesNotRetryTruncationOrCancel(t *testing.T) {
	mock := NewMockProvider().AddError(&ErrMaxTokensExceeded{}).AddResponse(`{}`)
	_, err := fastRetry(mock, 3).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Len(t, mock.Calls(), 1)

	mock = NewMockProvider().AddError(context.Canceled).AddResponse(`{}`)
	_, err = fastRetry(mock, 3).Generate(context.Background(), Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mock.Calls(), 1)
}

func TestBackoffRespectsRetryAfterAndCap(t *testing.T) {
	r := &retryProvider{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 2}}
	assert.Equal(t, 7*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))
	d := r.backoff(10, errors.New("x"))
	assert.LessOrEqual(t, d, time.Duration(float64(2*time.Second)*1.2))
	assert.GreaterOrEqual(t, d, time.Duration(float64(2*time.Second)*0.8))
}

func TestValidateResponse(t *testing.T) {
	require.NoError(t, validateResponse(nil, []byte("not json")))
	require.NoError(t, validateResponse(scoreSchema, []byte(`{"score": 3}`)))

	var inv *ErrInvalidResponse
	require.ErrorAs(t, validateResponse(scoreSchema, []byte(`{"score": "high"}`)), &inv)
	require.ErrorAs(t, validateResponse(scoreSchema, []byte(`{`)), &inv)
	assert.True(t, IsUpstream(inv))
}

func TestRateLimitHonoursContext(t *testing.T) {
	mock := NewMockProvider().AddResponse(`{}`).AddResponse(`{}`)
	p := WithRateLimit(mock, 0.001, 1)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Len(t, mock.Calls(), 1)

	assert.Same(t, Provider(mock), WithRateLimit(mock, 0, 1))
}

func TestMockWithoutResponsesIsUnavailable(t *testing.T) {
	p := WithObservability(NewMockProvider(), logger.NewNop())
	_, err := p.Generate(WithPurpose(context.Background(), "evaluate"), Request{})
	var down *ErrProviderUnavailable
	require.ErrorAs(t, err, &down)
	assert.True(t, IsMock(p))
	assert.Equal(t, "unavailable", statusLabel(err))
}

func TestPurposeDefaults(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "flashcards", PurposeFrom(WithPurpose(context.Background(), "flashcards")))
}

func TestConfigValidateAndFactory(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	p, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	assert.True(t, IsMock(p))

	cfg.Provider = ProviderAnthropic
	cfg.AnthropicAPIKey = ""
	require.ErrorIs(t, cfg.Validate(), ErrNotConfigured)

	cfg.Provider = "watson"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	p, err = New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
	assert.False(t, IsMock(p))
}

func TestDiscoverProvider(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("OPENROUTER_API_KEY", "or")

	cfg := DiscoverProvider(Config{})
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "ak", cfg.AnthropicAPIKey)

	cfg = DiscoverProvider(Config{Provider: ProviderOpenRouter})
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "google/gemini-2.0-flash-exp", cfg.ModelOrDefault())
}

func TestGeminiSchemaConversion(t *testing.T) {
	s := geminiSchema(scoreSchema.Definition)
	require.Contains(t, s.Properties, "score")
	assert.Equal(t, []string{"score"}, s.Required)
}

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":            `{"a":1}`,
		"Here you go: [1,2,3] hope it helps": `[1,2,3]`,
		"  {\"a\":{\"b\":2}}  ":              `{"a":{"b":2}}`,
		"no json here":                       `no json here`,
	}
	for in, want := range cases {
		assert.Equal(t, want, string(CleanJSON([]byte(in))), in)
	}
}
