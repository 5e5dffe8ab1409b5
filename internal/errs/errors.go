// Package errs provides the typed error taxonomy shared by the workflow
// engine and the HTTP edge. Every domain check raises exactly one kind at
// the point of detection; the transport layer maps kinds to status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidState      Kind = "INVALID_STATE"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInsufficientLimit Kind = "INSUFFICIENT_LIMIT"
	KindNoEligibleLender  Kind = "NO_ELIGIBLE_LENDER"
	KindConflict          Kind = "CONFLICT"
	KindInternal          Kind = "INTERNAL"
)

// Error is a classified application error. Cause, when set, carries the
// underlying failure for logging; Message is safe for API responses
// except for KindInternal outside debug mode.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match two *Error values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound reports a missing entity.
func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

// Forbidden reports a role or ownership mismatch.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// InvalidState reports an action attempted in a state that does not permit it.
func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

// Validation reports a malformed or missing required field.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return Wrap(KindInternal, "internal error", cause)
}

// KindOf extracts the kind from any error; unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to its fixed transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState, KindValidation, KindInsufficientLimit, KindNoEligibleLender:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
