package retry

import "time"

// Attempt describes one failed attempt of Do.
type Attempt struct {
	// Number is 1-based.
	Number int
	Max    int
	Err    error
	// Retryable is false for errors that end Do immediately.
	Retryable bool
	// Backoff is the wait before the next attempt. It is zero on the
	// final attempt.
	Backoff time.Duration
}

// Exhausted reports whether this was the last allowed attempt of a
// retryable error.
func (a Attempt) Exhausted() bool {
	return a.Retryable && a.Number >= a.Max
}

// Observer is told about every failed attempt. It must not block.
type Observer func(Attempt)

func (o Observer) observe(a Attempt) {
	if o != nil {
		o(a)
	}
}
