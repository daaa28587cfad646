// Package apperror provides the structured error taxonomy shared by every layer.
// Domain code returns *AppError for expected failures; infrastructure errors are
// wrapped with fmt.Errorf and surface as INTERNAL_ERROR at the API boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Input shape and business validation (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeFormat       = "FORMAT_ERROR"
	CodeChecksum     = "CHECKSUM_ERROR"
	CodeInvalidRange = "INVALID_RANGE"

	// Business rule violations (422)
	CodeExhausted              = "RANGE_EXHAUSTED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeInvalidState   = "INVALID_STATE"
	CodeDuplicate      = "DUPLICATE_ENTRY"
	CodeDuplicateRange = "DUPLICATE_RANGE"
)

// AppError is the standard error type for the platform.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details carries the offending value and the expected contract
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// --- Factory functions ---

// NewValidation creates a business-rule validation error (400).
func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

// NewFormat reports malformed input shape, e.g. wrong length or non-digits.
func NewFormat(field, message string, value any) *AppError {
	return newError(CodeFormat, http.StatusBadRequest, message).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewChecksum reports well-formed input that fails its check-digit math.
func NewChecksum(field string, value any, expected, got int) *AppError {
	return newError(CodeChecksum, http.StatusBadRequest,
		fmt.Sprintf("%s check digit mismatch: expected %d, got %d", field, expected, got)).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("expected", expected).
		WithDetail("got", got)
}

// NewInvalidRange reports a range configuration that violates start < end.
func NewInvalidRange(message string) *AppError {
	return newError(CodeInvalidRange, http.StatusBadRequest, message)
}

// NewDuplicateRange reports an existing category+priority pair.
func NewDuplicateRange(category string, priority int) *AppError {
	return newError(CodeDuplicateRange, http.StatusConflict,
		fmt.Sprintf("range %s with priority %d already exists", category, priority)).
		WithDetail("category", category).
		WithDetail("priority", priority)
}

// NewExhausted reports that no active range of the category has capacity left.
func NewExhausted(category string) *AppError {
	return newError(CodeExhausted, http.StatusUnprocessableEntity,
		fmt.Sprintf("all active %s check ranges are exhausted", category)).
		WithDetail("category", category)
}

// NewInvalidTransition reports an illegal lifecycle move.
func NewInvalidTransition(entity, from, to string) *AppError {
	return newError(CodeInvalidTransition, http.StatusUnprocessableEntity,
		fmt.Sprintf("%s cannot move from %s to %s", entity, from, to)).
		WithDetail("from", from).
		WithDetail("to", to)
}

// NewInvalidState reports an operation that the entity's current state forbids.
func NewInvalidState(entity, state, message string) *AppError {
	return newError(CodeInvalidState, http.StatusConflict, message).
		WithDetail("entity", entity).
		WithDetail("state", state)
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", entity)).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(CodeConcurrentModification, http.StatusConflict,
		"Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field string, value any) *AppError {
	return newError(CodeDuplicate, http.StatusConflict,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any AppError in the chain carries code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return IsCode(err, CodeConcurrentModification)
}
