package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type limitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit paces calls to rps with the given burst. A non-positive rps
// returns p unchanged.
func WithRateLimit(p Provider, rps float64, burst int) Provider {
	if rps <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &limitedProvider{inner: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limitedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &ErrRateLimit{Err: fmt.Errorf("client limiter: %w", err)}
	}
	return l.inner.Generate(ctx, req)
}

func (l *limitedProvider) ModelID() string { return l.inner.ModelID() }

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds every attempt by d.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }
