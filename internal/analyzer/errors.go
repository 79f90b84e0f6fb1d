package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Sentinel errors for analyzer client operations
var (
	// ErrNotRunning is returned when nothing is listening at the configured endpoint
	ErrNotRunning = errors.New("analysis service not running")
	// ErrConnectionTimeout is returned when the connection times out
	ErrConnectionTimeout = errors.New("analysis service connection timeout")
	// ErrConnectionFailed is returned when connection fails for unknown reasons
	ErrConnectionFailed = errors.New("analysis service connection failed")
	// ErrRequestFailed is returned when the service answers with a non-2xx status
	ErrRequestFailed = errors.New("analysis request failed")
	// ErrMalformedResponse is returned when a body cannot be decoded or lacks required fields
	ErrMalformedResponse = errors.New("malformed response from analysis service")
	// ErrNoFiles is returned when Analyze is called without files
	ErrNoFiles = errors.New("no images selected")
	// ErrEmptyPrompt is returned when Analyze is called with a blank prompt
	ErrEmptyPrompt = errors.New("no prompt provided")
)

// APIError is a non-2xx analyze response.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets callers match any APIError with errors.Is(err, ErrRequestFailed).
func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// Message returns the text a user should see for err: the service's own
// error message for API errors, otherwise the error string.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// classifyError converts low-level HTTP errors into user-friendly errors.
func classifyError(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	// Check for context deadline exceeded (timeout)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrConnectionTimeout
	}

	// Check for context canceled
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}

	// Check for timeout from net package
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrConnectionTimeout
	}

	// Connection refused means nothing is listening
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w at %s", ErrNotRunning, endpoint)
	}

	// Return wrapped error for unknown cases (DNS errors, TLS errors, etc.)
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}
