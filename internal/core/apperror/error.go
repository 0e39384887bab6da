// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes, one per error kind the core can surface.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"

	// Input errors (400)
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidQuantity = "INVALID_QUANTITY"

	// Business rule violations (422)
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOverflow          = "OVERFLOW"

	// Authentication / authorization (401, 403)
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeAccountBlocked         = "ACCOUNT_BLOCKED"
	CodeSubscriptionExpired    = "SUBSCRIPTION_EXPIRED"
	CodePasswordChangeRequired = "PASSWORD_CHANGE_REQUIRED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeDependencyExists = "DEPENDENCY_EXISTS"
	CodeConflictingEdit  = "CONFLICTING_EDIT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
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

// --- Factory functions ---

// NewInvalidInput creates an input validation error (400)
func NewInvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidField is NewInvalidInput with the offending field attached.
func NewInvalidField(field, message string) *AppError {
	return NewInvalidInput(message).WithDetail("field", field)
}

// NewInvalidQuantity creates an error for a zero or otherwise unusable quantity.
func NewInvalidQuantity(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock creates a stock shortage error carrying the current stock.
func NewInsufficientStock(productID int64, requested, current int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"current":    current,
		},
	}
}

// NewOverflow creates an error for values outside the storable fixed-point range.
func NewOverflow(field string, value any) *AppError {
	return &AppError{
		Code:       CodeOverflow,
		Message:    fmt.Sprintf("%s exceeds the storable range", field),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"field": field, "value": value},
	}
}

// NewConflictingEdit creates an optimistic locking error
func NewConflictingEdit(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConflictingEdit,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAccessDenied creates an authorization error (403)
func NewAccessDenied(message string) *AppError {
	return &AppError{
		Code:       CodeAccessDenied,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewAccountBlocked is returned at the authentication boundary for blocked users.
func NewAccountBlocked(username string) *AppError {
	return &AppError{
		Code:       CodeAccountBlocked,
		Message:    "Account is blocked",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"username": username},
	}
}

// NewSubscriptionExpired is returned at the authentication boundary for lapsed tenants.
func NewSubscriptionExpired(endDate string) *AppError {
	return &AppError{
		Code:       CodeSubscriptionExpired,
		Message:    "Subscription expired",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"subscription_end_date": endDate},
	}
}

// NewPasswordChangeRequired refuses operations until the forced change is done.
func NewPasswordChangeRequired() *AppError {
	return &AppError{
		Code:       CodePasswordChangeRequired,
		Message:    "Password change required",
		HTTPStatus: http.StatusForbidden,
	}
}

// NewDuplicateName creates a uniqueness violation error (409)
func NewDuplicateName(entity, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicateName,
		Message:    fmt.Sprintf("%s with this name already exists", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "name": value},
	}
}

// NewDependencyExists is returned when dependent rows block a delete.
func NewDependencyExists(entity string, ids any) *AppError {
	return &AppError{
		Code:       CodeDependencyExists,
		Message:    fmt.Sprintf("%s has dependent history and cannot be deleted", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "ids": ids},
	}
}

// --- Row-level aggregation for bulk operations ---

// RowError describes a single invalid row of a bulk import.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewInvalidRows aggregates per-row failures into one INVALID_INPUT error.
func NewInvalidRows(rows []RowError) *AppError {
	return NewInvalidInput(fmt.Sprintf("%d invalid row(s), nothing was imported", len(rows))).
		WithDetail("rows", rows)
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

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConflictingEdit checks if error is CodeConflictingEdit
func IsConflictingEdit(err error) bool {
	return HasCode(err, CodeConflictingEdit)
}
