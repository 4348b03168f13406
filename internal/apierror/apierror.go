// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// Error is a service-layer error carrying the HTTP status it maps to.
// Services return these instead of bare errors so handlers never guess the
// status code from message text.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// BadRequest: malformed input, invalid enum values, non-positive amounts.
func BadRequest(msg string) *Error { return &Error{Status: http.StatusBadRequest, Detail: msg} }

// NotFound: session, order or receivable absent for the given id/franchise.
func NotFound(msg string) *Error { return &Error{Status: http.StatusNotFound, Detail: msg} }

// Conflict: duplicate open session, or an operation that requires an open
// session when none exists.
func Conflict(msg string) *Error { return &Error{Status: http.StatusConflict, Detail: msg} }

// StateTransition: illegal order status transition or mutation against a
// closed session. Same 409 mapping as Conflict; a distinct constructor so
// call sites document which rule fired.
func StateTransition(msg string) *Error {
	return &Error{Status: http.StatusConflict, Detail: msg}
}

// StatusOf extracts the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
