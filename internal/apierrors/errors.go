package apierrors

import (
	"fmt"
	"net/http"
)

// Error codes returned to API clients
const (
	CodeNotFound           = "NOT_FOUND"
	CodeCallNotFound       = "CALL_NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeAtCapacity         = "AT_CAPACITY"
	CodeStorageDisabled    = "STORAGE_DISABLED"
	CodeAIServiceError     = "AI_SERVICE_ERROR"
	CodeTelephonyError     = "TELEPHONY_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is an error with everything needed to answer an HTTP request.
// Err is logged, never sent.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NotFound returns a 404 error
func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

// BadRequest returns a 400 error
func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

// Forbidden returns a 403 error
func Forbidden(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, Code: code, Message: message}
}

// ServiceUnavailable returns a 503 error that keeps the cause for logging
func ServiceUnavailable(code, message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: code, Message: message, Err: err}
}

// InternalError returns a sanitized 500 error - never exposes internal details
func InternalError(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		Err:        err,
	}
}
