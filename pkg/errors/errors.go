// Package errors provides structured error types for LocusZoom.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the server and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into two groups. Configuration codes (CONFIG_ERROR, NOT_FOUND,
// SOURCE_RESOLUTION, MISSING_URL) are returned synchronously from the call that
// received the bad input. Data codes (FIELD_MISMATCH, TRANSPORT_ERROR, TIMEOUT)
// are returned from blocking fetches and are caught once, at the panel, which
// reports them as RENDER_FAULT.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "layout %s/%s not found", kind, name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing layout
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTransport, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeConfig            Code = "CONFIG_ERROR"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeSourceResolution  Code = "SOURCE_RESOLUTION"
	ErrCodeMissingURL        Code = "MISSING_URL"
	ErrCodeInvalidRegion     Code = "INVALID_REGION"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeUnsupportedSource Code = "UNSUPPORTED_SOURCE"

	// Data errors
	ErrCodeFieldMismatch Code = "FIELD_MISMATCH"
	ErrCodeTransport     Code = "TRANSPORT_ERROR"
	ErrCodeTimeout       Code = "TIMEOUT"

	// Rendering errors
	ErrCodeRenderFault Code = "RENDER_FAULT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether any *Error in err's chain carries the given code.
// A RENDER_FAULT wrapping a TIMEOUT matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// IsData reports whether err is an asynchronous data error, one that a panel
// is expected to catch and show on its curtain rather than propagate.
func IsData(err error) bool {
	return Is(err, ErrCodeFieldMismatch) || Is(err, ErrCodeTransport) || Is(err, ErrCodeTimeout)
}
