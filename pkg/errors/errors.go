package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error kinds
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternal       = errors.New("internal server error")
	ErrValidation     = errors.New("validation error")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrInputFormat    = errors.New("input format error")
	ErrEmptyDataset   = errors.New("empty dataset")
	ErrDirectoryEntry = errors.New("malformed directory entry")
	ErrRender         = errors.New("render failed")
	ErrWrite          = errors.New("write failed")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Err:        ErrTokenExpired,
		Code:       "TOKEN_EXPIRED",
		Message:    "token has expired",
		StatusCode: http.StatusUnauthorized,
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Err:        ErrTokenInvalid,
		Code:       "TOKEN_INVALID",
		Message:    "invalid token",
		StatusCode: http.StatusUnauthorized,
	}
}

// InputFormat reports a punch-log source that cannot be read at all:
// zero rows, or a retained row with fewer than two fields.
func InputFormat(source string, message string) *AppError {
	return &AppError{
		Err:        ErrInputFormat,
		Code:       "INPUT_FORMAT",
		Message:    fmt.Sprintf("%s: %s", source, message),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// EmptyDataset reports a source where every row was dropped during
// timestamp parsing, leaving nothing to aggregate.
func EmptyDataset(source string) *AppError {
	return &AppError{
		Err:        ErrEmptyDataset,
		Code:       "EMPTY_DATASET",
		Message:    fmt.Sprintf("%s: no parsable punch events", source),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// RenderFailed reports a spreadsheet serialization failure.
func RenderFailed(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrRender, err),
		Code:       "RENDER_FAILED",
		Message:    "failed to render report",
		StatusCode: http.StatusInternalServerError,
	}
}

// WriteFailed reports an artifact or history write failure.
func WriteFailed(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrWrite, err),
		Code:       "WRITE_FAILED",
		Message:    "failed to write output",
		StatusCode: http.StatusInternalServerError,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
