package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry, optionally carrying the
// HTTP status that produced it. The SerpAPI client wraps 429 and 5xx
// responses this way so quota bursts back off instead of failing the crawl.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// retryableSyscalls are connection-level failures worth a second attempt.
var retryableSyscalls = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.EPIPE,
}

// retryableFragments match wrapped errors whose cause survives only in the
// message: Go HTTP-client failures, plus the net:: codes Chromium reports
// when a search-page or storefront navigation dies mid-flight.
var retryableFragments = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"transport connection broken",
	"net::err_connection_reset",
	"net::err_connection_closed",
	"net::err_timed_out",
	"net::err_name_not_resolved",
	"net::err_network_changed",
}

// IsTransient reports whether the error is worth retrying: an explicit
// TransientError, a per-fetch deadline (browser navigations time out with
// context.DeadlineExceeded), a network timeout, or a known connection-level
// failure. Caller cancellation (context.Canceled), bot-block pages, and API
// rejections are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, sysErr := range retryableSyscalls {
		if errors.Is(err, sysErr) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether the status indicates a server-side
// condition that may clear on retry. 429 covers SerpAPI plan-quota bursts.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
