package apperror

import (
	"errors"
	"net/http"
)

// Kind is a stable machine-readable error code returned to clients
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindBadRequest           Kind = "BAD_REQUEST"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindConflict             Kind = "CONFLICT"
	KindValidation           Kind = "VALIDATION_FAILED"
	KindInternal             Kind = "INTERNAL"
	KindEmptyBill            Kind = "EMPTY_BILL"
	KindNonPositiveTotal     Kind = "NON_POSITIVE_TOTAL"
	KindInvalidPayment       Kind = "INVALID_PAYMENT_AMOUNT"
	KindInvalidPaymentMethod Kind = "INVALID_PAYMENT_METHOD"
	KindBillAlreadyExists    Kind = "BILL_ALREADY_EXISTS"
	KindConcurrentUpdate     Kind = "CONCURRENT_UPDATE"
	KindStalePayment         Kind = "STALE_PAYMENT"
	KindNotBillable          Kind = "APPOINTMENT_NOT_BILLABLE"
	KindRateLimited          Kind = "RATE_LIMITED"
	KindUnavailable          Kind = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"-"`
	Kind    Kind         `json:"code"`
	Message string       `json:"error"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the domain error the AppError was built from, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidToken   = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates an application error that still matches cause with errors.Is
func Wrap(cause error, code int, kind Kind) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: cause.Error(),
		cause:   cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(kind Kind, message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    kind,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible.
// Unknown errors become a generic 500 so internal details never reach clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: ErrInternalServer.Message,
		cause:   err,
	}
}
