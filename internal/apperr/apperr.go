// Package apperr provides the error taxonomy shared by services and HTTP
// handlers. Services return *Error values; the echo error handler renders
// them with a fixed status code and never leaks internal causes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindBadRequest      Kind = "BAD_REQUEST"
	KindValidation      Kind = "VALIDATION"
	KindConflict        Kind = "CONFLICT"
	KindPaymentFailed   Kind = "PAYMENT_FAILED"
	KindInternal        Kind = "INTERNAL"
)

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindPaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Issue is one field-level validation problem.
type Issue struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error is the domain error type.
type Error struct {
	Kind    Kind    // Machine-readable classification
	Message string  // Client-facing message
	Issues  []Issue // Populated for KindValidation only
	Cause   error   // Wrapped underlying error, never rendered
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || e.Message == t.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func BadRequest(message string) *Error      { return New(KindBadRequest, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }

// Validation builds a validation error from field issues.
func Validation(issues []Issue) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Issues: issues}
}

// Internal wraps an unexpected failure. The message is only logged.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// PaymentFailed wraps a gateway decline with a message safe to show the payer.
func PaymentFailed(message string, cause error) *Error {
	return &Error{Kind: KindPaymentFailed, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
