package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Outbound data-source errors
	ErrorCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrorCodeUpstreamTimeout    ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorCodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	ErrorCodeUpstreamStatus     ErrorCode = "UPSTREAM_STATUS"
	ErrorCodeCoinNotFound       ErrorCode = "COIN_NOT_FOUND"

	// Validation errors
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeEmptyMessage   ErrorCode = "EMPTY_MESSAGE"
	ErrorCodeMalformedJSON  ErrorCode = "MALFORMED_JSON"

	// Internal errors
	ErrorCodeStorageError  ErrorCode = "STORAGE_ERROR"
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// HTTPStatusCode returns the appropriate HTTP status code for each error type
func (e ErrorCode) HTTPStatusCode() int {
	switch e {
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeInvalidRequest, ErrorCodeEmptyMessage, ErrorCodeMalformedJSON:
		return http.StatusBadRequest
	case ErrorCodeCoinNotFound:
		return http.StatusNotFound
	case ErrorCodeUpstreamTimeout, ErrorCodeNetworkUnreachable, ErrorCodeUpstreamStatus:
		return http.StatusBadGateway
	case ErrorCodeStorageError, ErrorCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError represents an application error with a code and optional cause
type AppError struct {
	Code       ErrorCode
	Message    string
	Details    string
	Cause      error
	StatusCode int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: code.HTTPStatusCode(),
	}
}

// NewAppErrorWithCause creates a new application error with underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: code.HTTPStatusCode(),
	}
}

// NewAppErrorWithDetails creates a new application error with details
func NewAppErrorWithDetails(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: code.HTTPStatusCode(),
	}
}

// NewRateLimitError reports an admission denied by a local rate limiter;
// no network call was made.
func NewRateLimitError(limit int) *AppError {
	return NewAppErrorWithDetails(
		ErrorCodeRateLimited,
		"Rate limit exceeded",
		fmt.Sprintf("Maximum %d requests per minute allowed", limit),
	)
}

// NewCoinNotFoundError reports an identifier absent from a source response
func NewCoinNotFoundError(coinID string) *AppError {
	return NewAppErrorWithDetails(
		ErrorCodeCoinNotFound,
		"Coin not found",
		fmt.Sprintf("No data for coin %q", coinID),
	)
}

// NewUpstreamStatusError reports a non-2xx response from the data source
func NewUpstreamStatusError(statusCode int) *AppError {
	return NewAppErrorWithDetails(
		ErrorCodeUpstreamStatus,
		"Data source returned an error",
		fmt.Sprintf("HTTP status %d", statusCode),
	)
}

// HasCode reports whether err is an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ErrorLogger is the logging surface HandleError needs
type ErrorLogger interface {
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// HandleError converts any error into the standard JSON error response
func HandleError(c *gin.Context, err error, log ErrorLogger) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewAppErrorWithCause(ErrorCodeInternalError, "Internal server error", err)
	}

	if log != nil {
		if appErr.StatusCode >= 500 {
			log.Errorf("request failed: %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr)
		} else {
			log.Warnf("request rejected: %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr)
		}
	}

	c.JSON(appErr.StatusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Timestamp: time.Now().UTC(),
	})
}
