package llm

import (
	"context"
	"errors"
	"time"

	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

type instrumentedProvider struct {
	inner Provider
	log   logger.Logger
}

// WithObservability logs every call and records latency, status and token
// usage under the context's purpose label.
func WithObservability(p Provider, log logger.Logger) Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &instrumentedProvider{inner: p, log: log.Named("llm")}
}

func (o *instrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	status := statusLabel(err)
	metrics.RecordLLMRequest(purpose, status, float64(elapsed.Milliseconds()))

	fields := []logger.Field{
		logger.String("purpose", purpose),
		logger.String("model", o.inner.ModelID()),
		logger.Duration("latency", elapsed),
	}
	if err != nil {
		o.log.Warn(ctx, "generation failed", append(fields, logger.String("status", status), logger.Error(err))...)
		return nil, err
	}
	metrics.RecordLLMTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	o.log.Debug(ctx, "generation complete", append(fields,
		logger.Int("input_tokens", resp.Usage.InputTokens),
		logger.Int("output_tokens", resp.Usage.OutputTokens))...)
	return resp, nil
}

func (o *instrumentedProvider) ModelID() string { return o.inner.ModelID() }

func statusLabel(err error) string {
	var (
		rl    *ErrRateLimit
		inv   *ErrInvalidResponse
		trunc *ErrMaxTokensExceeded
		down  *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &inv):
		return "invalid"
	case errors.As(err, &trunc):
		return "truncated"
	case errors.As(err, &down):
		return "unavailable"
	}
	return "error"
}
