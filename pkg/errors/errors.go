// Package errors provides structured error types for setup-pdm.
//
// Every failure that can end a setup run carries a [Code] so the CLI can
// report one human-readable message while tests and callers can still
// branch on the category:
//   - INVALID_*: input validation failures
//   - RUNTIME_NOT_FOUND: no Python interpreter matched the request
//   - FETCH_FAILED, NETWORK_ERROR, NOT_FOUND: installer script download
//   - INSTALLER_FAILED: the bootstrap installer exited nonzero
//   - INVALID_RESULT: the installer's result file broke its contract
//   - WIRING_FAILED: environment effects could not be derived
//   - CACHE_FAILED: the dependency cache collaborator failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid architecture: %s", arch)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetchFailed, origErr, "download %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Setup stage errors
	ErrCodeRuntimeNotFound Code = "RUNTIME_NOT_FOUND"
	ErrCodeFetchFailed     Code = "FETCH_FAILED"
	ErrCodeInstallerFailed Code = "INSTALLER_FAILED"
	ErrCodeInvalidResult   Code = "INVALID_RESULT"
	ErrCodeWiringFailed    Code = "WIRING_FAILED"
	ErrCodeCacheFailed     Code = "CACHE_FAILED"

	// Network errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

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
// For *Error types, returns the message without the code prefix,
// followed by the cause when one is attached.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
