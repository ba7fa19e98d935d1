// Package errors provides structured errors with HTTP status mapping for the API boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pscheid92/sessionhub/internal/domain"
)

// ErrorType is the category of an error, used for status mapping and response formatting.
type ErrorType string

const (
	TypeValidation ErrorType = "validation" // 400
	TypeNotFound   ErrorType = "not_found"  // 404
	TypeConflict   ErrorType = "conflict"   // 409
	TypeRateLimit  ErrorType = "rate_limit" // 429
	TypeInternal   ErrorType = "internal"   // 500
	TypeExternal   ErrorType = "external"   // 502
)

// Error is a structured error with a type, a client-facing message and optional context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimit:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error { return newError(TypeValidation, message, nil) }
func NotFoundError(message string) *Error   { return newError(TypeNotFound, message, nil) }
func ConflictError(message string) *Error   { return newError(TypeConflict, message, nil) }
func RateLimitError(message string) *Error  { return newError(TypeRateLimit, message, nil) }

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithField adds a context field (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Reason  string         `json:"reason,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) ToResponse() ErrorResponse {
	resp := ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
	if reason, ok := e.Context["reason"].(string); ok {
		resp.Reason = reason
	}
	return resp
}

// AsStructuredError converts any error into a structured Error.
// Structured errors pass through, domain sentinels are mapped to their category,
// everything else becomes an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return FromDomain(err)
}

// FromDomain maps domain sentinel errors to structured errors.
func FromDomain(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return ValidationError("invalid session identifier").WithField("reason", "invalid_identifier")
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrCredentialNotFound):
		return NotFoundError("session not found").WithField("reason", "not_found")
	case errors.Is(err, domain.ErrAlreadyConnected):
		return ConflictError("session already connected").WithField("reason", "already_connected")
	case errors.Is(err, domain.ErrSessionBusy), errors.Is(err, domain.ErrLockHeld):
		return ConflictError("session operation in progress").WithField("reason", "busy")
	case errors.Is(err, domain.ErrPairingFailed):
		return ExternalError("pairing failed", err).WithField("reason", "pairing_failed")
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return ExternalError("connection gateway unavailable", err).WithField("reason", "gateway_unavailable")
	default:
		return InternalError("internal server error", err)
	}
}
