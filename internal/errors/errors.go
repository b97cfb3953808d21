package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of client error, decided once at the
// transport boundary and consumed everywhere else.
type ErrorCode string

const (
	// ErrCodeAuthExpired indicates a 401 on a non-auth endpoint, recoverable via refresh.
	// Callers normally never see it; the transport handles it internally.
	ErrCodeAuthExpired ErrorCode = "auth_expired"
	// ErrCodeRefreshFailed indicates the refresh call itself failed or no
	// refresh credential exists. Irrecoverable; forces logout.
	ErrCodeRefreshFailed ErrorCode = "refresh_failed"
	// ErrCodeForbidden indicates a 403: authenticated but not allowed.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeRequestFailed indicates any other non-2xx response.
	ErrCodeRequestFailed ErrorCode = "request_failed"
	// ErrCodeNotFound indicates a 404 for a specific resource.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input rejected client-side or a 422.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal client error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// APIError represents a structured client error with a code, HTTP status,
// and the server-provided detail message when one was present.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type APIError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Status is the HTTP status code that produced the error (0 when none).
	Status int
	// Message is a human-readable error message
	Message string
	// Detail is the server-provided detail string, verbatim, when present.
	Detail string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the server detail when present, else the message.
// This is the single string surfaced to users for generic failures.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

// AuthExpired creates a new AuthExpired error for a 401 response.
func AuthExpired(detail string) *APIError {
	return &APIError{
		Code:    ErrCodeAuthExpired,
		Status:  401,
		Message: "authentication expired",
		Detail:  detail,
	}
}

// RefreshFailed wraps a failed refresh attempt.
func RefreshFailed(cause error) *APIError {
	return &APIError{
		Code:    ErrCodeRefreshFailed,
		Status:  401,
		Message: "token refresh failed",
		Cause:   cause,
	}
}

// Forbidden creates a new Forbidden error for a 403 response.
func Forbidden(detail string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Status:  403,
		Message: "access forbidden",
		Detail:  detail,
	}
}

// RequestFailed creates a new RequestFailed error for a non-2xx response.
func RequestFailed(status int, detail string) *APIError {
	return &APIError{
		Code:    ErrCodeRequestFailed,
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
		Detail:  detail,
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Status:  404,
		Message: message,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Internal creates a new Internal error.
func Internal(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// Wrap wraps an existing error with an APIError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an APIError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsAuthExpired checks if an error is an AuthExpired error.
func IsAuthExpired(err error) bool {
	return isCode(err, ErrCodeAuthExpired)
}

// IsRefreshFailed checks if an error is a RefreshFailed error.
func IsRefreshFailed(err error) bool {
	return isCode(err, ErrCodeRefreshFailed)
}

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool {
	return isCode(err, ErrCodeForbidden)
}

// IsRequestFailed checks if an error is a RequestFailed error.
func IsRequestFailed(err error) bool {
	return isCode(err, ErrCodeRequestFailed)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// GetCode returns the ErrorCode from an error, or empty string if not an APIError.
func GetCode(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// GetStatus returns the HTTP status from an error, or 0 if not an APIError.
func GetStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
