package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks a failure worth retrying: the prediction service
// rate-limiting or erroring server-side, or a dropped connection while it
// restarts. The status code is kept for logging.
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

// NewTransientError wraps an error as transient. statusCode may be zero
// when the failure was not an HTTP response.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// connPatterns covers connection-level failures that surface only as
// wrapped error text from the HTTP client.
var connPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransient reports whether the error chain carries a TransientError or
// a connection-level failure. The ML service and backend both sit behind
// short-lived local deployments, so a refused or reset connection usually
// means a restart in progress rather than a dead endpoint.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range connPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether a response status is safe to
// retry. Client errors other than timeouts and rate limits are not: the
// same prediction payload would fail the same way again.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
