package agentry

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

// ErrorCategory tells the runtime what to do with a backend failure.
type ErrorCategory string

const (
	// ErrorTransient failures (rate limits, overload, flaky networks) are
	// retried with backoff.
	ErrorTransient ErrorCategory = "transient"
	// ErrorPermanent failures (bad credentials, unknown model) end the run.
	ErrorPermanent ErrorCategory = "permanent"
	// ErrorUserInput failures mean the request itself was rejected.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by every error a Gateway returns for a
// failed backend call.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool
	// StatusCode is the HTTP status, or 0.
	StatusCode() int
	// RetryAfter is the server's requested wait, or 0.
	RetryAfter() time.Duration
}

// Error is the CategorizedError produced by the built-in backends.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int
	RetryDelay time.Duration
	Cause      error
}

var _ CategorizedError = (*Error)(nil)

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Category() ErrorCategory { return e.Cat }

func (e *Error) Retryable() bool { return e.Cat == ErrorTransient }

func (e *Error) StatusCode() int { return e.Code }

func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

func NewTransientError(msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: code, Cause: cause}
}

// NewTransientErrorWithRetry carries the server's Retry-After hint.
func NewTransientErrorWithRetry(msg string, code int, retryAfter time.Duration, cause error) *Error {
	e := NewTransientError(msg, code, cause)
	e.RetryDelay = retryAfter
	return e
}

func NewPermanentError(msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: code, Cause: cause}
}

func NewUserInputError(msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: code, Cause: cause}
}

// NewStatusError categorizes a failed HTTP exchange by its status code.
// A server that asked for a retry (retryAfter > 0) is always transient.
func NewStatusError(msg string, code int, retryAfter time.Duration, cause error) *Error {
	if retryAfter > 0 {
		return NewTransientErrorWithRetry(msg, code, retryAfter, cause)
	}
	return &Error{Msg: msg, Cat: CategorizeStatus(code), Code: code, Cause: cause}
}

func asCategorized(err error) (CategorizedError, bool) {
	var ce CategorizedError
	ok := errors.As(err, &ce)
	return ce, ok
}

// categoryOf returns "" for errors without a category.
func categoryOf(err error) ErrorCategory {
	if ce, ok := asCategorized(err); ok {
		return ce.Category()
	}
	return ""
}

// IsTransient, IsPermanent and IsUserInput look through wrapping.
func IsTransient(err error) bool { return categoryOf(err) == ErrorTransient }

func IsPermanent(err error) bool { return categoryOf(err) == ErrorPermanent }

func IsUserInput(err error) bool { return categoryOf(err) == ErrorUserInput }

// StatusCodeOf returns the status code of a categorized error, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := asCategorized(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the Retry-After hint of a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := asCategorized(err); ok {
		return ce.RetryAfter()
	}
	return 0
}

// CategorizeStatus maps an HTTP status onto a category. 429 and 5xx are
// transient; 400, 404 and 422 are user input; anything else is permanent.
func CategorizeStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code >= 500 && code < 600:
		return ErrorTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ErrorUserInput
	}
	return ErrorPermanent
}

// ParseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Missing, malformed or past values yield 0.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}
