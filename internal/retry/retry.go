package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/agentry"
)

// backoff returns the configured delay, or the server's Retry-After when
// that is longer.
func backoff(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempts run out. The last error is returned on exhaustion. Waits end
// early when ctx is done. observe may be nil.
func Do[T any](ctx context.Context, cfg Config, observe Observer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		a := Attempt{
			Number:    n,
			Max:       attempts,
			Err:       err,
			Retryable: IsTransient(err) && ctx.Err() == nil,
		}
		if !a.Retryable || n == attempts {
			observe.observe(a)
			return zero, err
		}

		a.Backoff = backoff(cfg.Delay(n-1), err)
		observe.observe(a)

		timer := time.NewTimer(a.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
