package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same message, so wrapped copies of a
// sentinel still satisfy errors.Is against it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == e.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "record not found",
	}

	// ErrStorageRead marks an absent, unreadable or malformed record.
	// The store recovers from it with defaults and never returns it from Load calls.
	ErrStorageRead = &Error{
		Code:    http.StatusInternalServerError,
		Message: "storage read failed",
	}

	// ErrStorageWrite marks a failed write. It is returned to the caller unrecovered.
	ErrStorageWrite = &Error{
		Code:    http.StatusInternalServerError,
		Message: "storage write failed",
	}

	// ErrClosed is returned by backends used after Close.
	ErrClosed = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "storage closed",
	}
)
