// Package errors provides coded errors for bimtower's outer surfaces: the
// manifest loader, the CLI and the HTTP API.
//
// The element store, resolver and exporter never return errors; invalid
// input there is a logged no-op. Errors from this package appear only where
// user-supplied files and requests enter the system.
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - NOT_FOUND: a stored model or file does not exist
//   - STORAGE_ERROR / CACHE_ERROR: backend failures
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidElementID, "duplicate element id %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidElementID) {
//	    // Handle validation error
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidManifest, parseErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidManifest  Code = "INVALID_MANIFEST"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidElementID Code = "INVALID_ELEMENT_ID"
	ErrCodeInvalidFilename  Code = "INVALID_FILENAME"

	ErrCodeNotFound Code = "NOT_FOUND"

	ErrCodeStorage  Code = "STORAGE_ERROR"
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"

	ErrCodeUnsupported Code = "UNSUPPORTED"
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
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
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

// HTTPStatus maps an error to an HTTP status code. Uncoded errors map to
// 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidManifest, ErrCodeInvalidFormat,
		ErrCodeInvalidElementID, ErrCodeInvalidFilename:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ErrCodeStorage, ErrCodeCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
