package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// RateLimitError signals the provider is throttling this model.
// RetryAfter is the provider-supplied delay, zero when unspecified.
type RateLimitError struct {
	Model      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited on model %s, retry after %s", e.Model, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited on model %s", e.Model)
}

// ModelUnavailableError signals the model id is unknown, retired or not
// supported by the provider.
type ModelUnavailableError struct {
	Model  string
	Reason string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable: %s", e.Model, e.Reason)
}

// IsNetworkTransient reports whether err belongs to the connectivity failure
// class: timeouts, refused/reset connections, DNS failures. These are worth
// retrying on the same model.
func IsNetworkTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	return false
}
