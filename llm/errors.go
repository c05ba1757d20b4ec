package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// The retry loop separates failures it may retry from failures it must
// surface: rate limits, server errors, and network hiccups are
// transient; bad credentials and malformed requests are fatal. The
// taxonomy uses wrapper types rather than sentinels so the original
// error text survives %w chains.

// TransientError marks a failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a failure no retry can fix.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable.
func NewTransientError(err error) error { return &TransientError{Err: err} }

// NewFatalError wraps err as non-retryable.
func NewFatalError(err error) error { return &FatalError{Err: err} }

// IsTransient reports whether err carries a transient marker anywhere
// in its chain.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsFatal reports whether err carries a fatal marker anywhere in its
// chain.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// errorBodyLimit truncates endpoint error bodies in error text.
const errorBodyLimit = 200

// classifyHTTPError maps a non-200 endpoint status onto the taxonomy:
// 429 and 5xx are transient, everything else (auth, bad request,
// unknown) is fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	detail := string(body)
	if len(detail) > errorBodyLimit {
		detail = detail[:errorBodyLimit] + "..."
	}

	err := fmt.Errorf("LLM API error (status %d): %s", statusCode, detail)

	if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
		return NewTransientError(err)
	}
	return NewFatalError(err)
}
