// Package retry provides bounded exponential backoff for transient backend errors.
package retry

import (
	"math/rand/v2"
	"time"
)

// Config bounds how often and how patiently a request is retried.
// The first request is attempt 1, so MaxAttempts 1 disables retries.
type Config struct {
	MaxAttempts int
	// BaseDelay is the wait before the first retry. Each further retry
	// waits Factor times longer, up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Factor defaults to 2 when unset.
	Factor float64
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

// DefaultConfig allows five attempts starting at one second, capped at 30s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Factor:      2,
		Jitter:      0.1,
	}
}

// Disabled makes a single attempt.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay returns the wait after the given number of failed retries
// (0 for the first retry).
func (c Config) Delay(retries int) time.Duration {
	factor := c.Factor
	if factor <= 0 {
		factor = 2
	}

	d := float64(c.BaseDelay)
	for i := 0; i < retries; i++ {
		d *= factor
		if c.MaxDelay > 0 && d >= float64(c.MaxDelay) {
			break
		}
	}
	if c.MaxDelay > 0 {
		d = min(d, float64(c.MaxDelay))
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(d)
}
