// Package errors provides structured error types for minimalloc.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, HTTP API, and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the solver's own closed status set (Ok/NotFound/
// DeadlineExceeded/Aborted) plus the I/O-boundary failures (CSV parsing,
// config, cache) that sit outside the solver proper.
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidArgument, "missing required column %q", "size")
//	if errors.Is(err, errors.CodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeInternal, origErr, "failed to open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// CodeInvalidArgument marks malformed input: bad CSV columns, bad
	// integers, reversed intervals supplied where they are not permitted.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeNotFound marks a missing required resource: a missing CSV
	// column, an unknown cache entry, an unknown session id.
	CodeNotFound Code = "NOT_FOUND"

	// CodeDeadlineExceeded mirrors solve.DeadlineExceeded at the I/O
	// boundary (CLI/HTTP layers translate a solver timeout into this).
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"

	// CodeAborted mirrors solve.Aborted; this should never escape the
	// solver package itself, but is kept here so callers have a single
	// closed vocabulary of codes to switch over.
	CodeAborted Code = "ABORTED"

	// CodeInternal is an unexpected internal error (cache I/O failure,
	// session store failure, rendering failure).
	CodeInternal Code = "INTERNAL_ERROR"

	// CodeUnsupported marks a request for functionality that is
	// intentionally out of scope (e.g. an unknown render format).
	CodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
