package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	ai "github.com/spetersoncode/agentry"
)

// IsTransient reports whether err is worth retrying.
//
// Errors implementing ai.CategorizedError decide for themselves.
// Anything else is judged by its status code, by the network error it
// wraps, or failing that by its message.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ai.ErrorTransient
	}

	for _, check := range transientChecks {
		if check(err) {
			return true
		}
	}
	return false
}

var transientChecks = []func(error) bool{
	transientStatus,
	netTimeout,
	temporaryDNS,
	connectionErrno,
	transientMessage,
}

func transientStatus(err error) bool {
	var sc interface{ StatusCode() int }
	return errors.As(err, &sc) && ai.CategorizeStatus(sc.StatusCode()) == ai.ErrorTransient
}

// netTimeout also covers *url.Error, which implements net.Error.
func netTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func temporaryDNS(err error) bool {
	var de *net.DNSError
	return errors.As(err, &de) && de.IsTemporary
}

func connectionErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == syscall.ECONNRESET || errno == syscall.ECONNREFUSED || errno == syscall.ETIMEDOUT
}

var transientPhrases = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"rate limit",
	"overloaded",
	"bad gateway",
	"gateway timeout",
}

func transientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range transientPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
