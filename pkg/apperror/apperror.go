package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the error class surfaced to clients.
type Code string

const (
	// CodeOwnership — actor lacks rights over the journal and/or contact.
	CodeOwnership Code = "ownership"

	// CodeDuplicateMembership — (journal, contact) pair already active.
	CodeDuplicateMembership Code = "duplicate_membership"

	// CodeValidation — malformed or missing input, rejected before any write.
	CodeValidation Code = "validation"

	// CodeConflict — two writers raced on the same row; safe to retry.
	CodeConflict Code = "conflict"

	// CodeNotFound — missing or not visible to the actor.
	CodeNotFound Code = "not_found"

	// CodeInternal ...
	CodeInternal Code = "internal"
)

// Error is the client-facing error type. Message never includes
// identifiers of entities the actor cannot see.
type Error struct {
	Code    Code
	Message string

	cause error
}

// Error ...
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap ...
func (e *Error) Unwrap() error {
	return e.cause
}

// New ...
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf ...
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause for logging while presenting a clean
// message to the client.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the error class, defaulting to internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the client-facing message. Internal errors get a
// generic message so storage details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInternal {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error class to a response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeOwnership:
		return http.StatusForbidden
	case CodeDuplicateMembership, CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
