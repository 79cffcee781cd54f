// Package errors classifies gateway failures so callers can tell transport,
// decode and backend-rejection errors apart and the write queue can decide
// whether a failure is worth another attempt.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind says where in the request a failure happened.
type Kind int

const (
	// Transport failures never reached the backend or lost the response: DNS,
	// refused connections, timeouts, cancelled contexts.
	Transport Kind = iota
	// HTTP failures are non-2xx responses from the backend.
	HTTP
	// Decode failures are 2xx responses whose body was not the expected JSON.
	Decode
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case HTTP:
		return "http"
	case Decode:
		return "decode"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may succeed on another attempt (5xx, 408, 429, transport).
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail the same way every time (4xx, decode).
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError is the single error type returned across the gateway boundary.
type ClassifiedError struct {
	Op         string // e.g. "create entry"
	Kind       Kind
	Category   ErrorCategory
	StatusCode int    // 0 for non-HTTP errors
	Message    string // backend-provided message, if any
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Underlying)
	}
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	return false
}

// KindOf returns the Kind of a classified error and false for anything else.
func KindOf(err error) (Kind, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}
