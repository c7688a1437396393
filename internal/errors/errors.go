package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/logger"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// Domain error taxonomy. Services return these; handlers translate them to
// HTTP responses with RespondError. Anything else is an unclassified store
// failure and surfaces as a 500 without being wrapped or retried.

// NotFoundError signals that a referenced entity does not exist, belongs to
// a different organization, is archived, or is not owned by the caller.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFound creates a NotFoundError.
func NewNotFound(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// ValidationError signals malformed cross-field input accepted by the core
// layer itself (empty update payloads, inverted validity windows, rate card
// ids that do not resolve within the organization).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation creates a ValidationError.
func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ConflictError signals a uniqueness violation surfaced from the store and
// translated into a domain-meaningful message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict creates a ConflictError.
func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// RespondError maps a service error onto the HTTP surface. Unclassified
// errors are logged and reported as a generic 500 so store internals never
// leak to callers.
func RespondError(c *gin.Context, err error) {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, notFound.Message))
		return
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, validation.Message))
		return
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, conflict.Message))
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
	InternalError(c, "")
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}
