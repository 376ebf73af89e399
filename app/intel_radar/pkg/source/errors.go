package source

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

// ErrClientRequest marks a request the source rejected; retrying will not help.
var ErrClientRequest = errors.New("source rejected request")

// temporary is implemented by errors that know whether they are retryable.
type temporary interface {
	Temporary() bool
}

// IsTransient classifies err by kind: timeouts, connection resets and
// refusals, truncated bodies, 429 and 5xx are transient; 4xx is not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrClientRequest) || errors.Is(err, context.Canceled) {
		return false
	}

	var se *search.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return false
}

func statusError(provider string, code int, body []byte) error {
	return &search.StatusError{Provider: provider, StatusCode: code, Body: string(body)}
}
