package client

import "github.com/spetersoncode/agentry/internal/retry"

// RetryConfig controls how transport failures are retried. These retries
// sit below the agent's own tool and output retry budgets.
type RetryConfig = retry.Config

// DefaultRetryConfig returns 5 attempts with exponential backoff from 1s to
// 30s and 10% jitter.
func DefaultRetryConfig() RetryConfig {
	return retry.DefaultConfig()
}

// DisabledRetryConfig makes every request a single attempt.
func DisabledRetryConfig() RetryConfig {
	return retry.Disabled()
}

// IsTransientError reports whether err would be retried.
func IsTransientError(err error) bool {
	return retry.IsTransient(err)
}
