// Package domainerrors carries coded errors across service boundaries so the
// transport layer can translate them into HTTP responses without inspecting
// error strings. Stores return pkg/sentinel values; services wrap those into
// coded errors here.
package domainerrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	// CodeBadRequest covers missing or invalid caller input, including an
	// unresolvable template reference.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound covers lookups for records or templates that do not exist.
	CodeNotFound Code = "not_found"
	// CodeRenderFailed covers image decode, draw, encode, and artifact write
	// failures.
	CodeRenderFailed Code = "render_failed"
	// CodePersistence covers storage write failures after validation passed.
	CodePersistence Code = "persistence_failed"
	// CodeUnauthorized covers missing or invalid credentials at the boundary.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal_error"
)

// Error is the coded error type shared by all services.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message while preserving the underlying cause for
// errors.Is / errors.As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps domain codes onto HTTP statuses for the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeRenderFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePersistence, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
