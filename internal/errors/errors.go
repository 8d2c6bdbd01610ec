package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when request input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when credentials or tokens are rejected.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when no identity holds the required permission.
	ErrForbidden = errors.New("authentication required")
	// ErrNotFound is returned when a resource is absent or owned by someone else.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("resource already exists")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing resource, e.g. NotFound("category") renders
// "category not found".
func NotFound(resource string) error {
	return &kindError{message: resource + " not found", kind: ErrNotFound}
}

// Conflict wraps ErrConflict with a client-facing message.
func Conflict(message string) error {
	return &kindError{message: message, kind: ErrConflict}
}

// Unauthenticated wraps ErrUnauthenticated with a client-facing message.
func Unauthenticated(message string) error {
	return &kindError{message: message, kind: ErrUnauthenticated}
}

// kindError keeps a client-facing message while matching a sentinel.
type kindError struct {
	message string
	kind    error
}

func (e *kindError) Error() string        { return e.message }
func (e *kindError) Is(target error) bool { return target == e.kind }

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Internal   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// 500 whose message hides the cause; the cause is kept in Internal for logging.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error())
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error())
	default:
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "internal server error",
			Internal:   err,
		}
	}
}
