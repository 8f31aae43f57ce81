package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/amrixahmad/questionsmith/internal/logging"
)

// RetryProvider re-sends a quiz request after a transient failure. Waits
// grow exponentially with ±20% jitter unless the provider named a
// Retry-After. A payload that failed validation is re-asked once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger logging.Logger
}

// WithRetry wraps p. A nil logger discards retry warnings.
func WithRetry(p Provider, cfg RetryConfig, logger logging.Logger) Provider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RetryProvider{inner: p, config: cfg, logger: logger}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	invalidRetried := false

	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if invalidRetried {
				return nil, err
			}
			invalidRetried = true
		}
		if attempt+1 >= attempts {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.logger.WarnContext(ctx, "retrying llm request",
			"purpose", PurposeFrom(ctx), "attempt", attempt+1, "wait", wait, "error", err)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
