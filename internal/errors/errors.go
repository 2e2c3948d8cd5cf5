package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code.
// This lets callers match a category with errors.Is(err, ErrSchema).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeSchemaError      = "SCHEMA_ERROR"
	CodeDataLoadError    = "DATA_LOAD_ERROR"
	CodeInvalidRange     = "INVALID_RANGE"
	CodeDegenerateMetric = "DEGENERATE_METRIC"
)

// Category sentinels for errors.Is matching
var (
	ErrSchema           = New(CodeSchemaError, "schema error")
	ErrDataLoad         = New(CodeDataLoadError, "data load error")
	ErrInvalidRange     = New(CodeInvalidRange, "invalid range")
	ErrDegenerateMetric = New(CodeDegenerateMetric, "degenerate metric")
	ErrNotFound         = New(CodeNotFound, "not found")
	ErrInvalidInput     = New(CodeInvalidInput, "invalid input")
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// SchemaError reports required columns absent from the dataset header
func SchemaError(message string) *AppError {
	return New(CodeSchemaError, message)
}

// DataLoadError reports a missing, unreadable or malformed dataset
func DataLoadError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDataLoadError,
		Message: message,
		Cause:   cause,
	}
}

func InvalidRange(minRank, maxRank int) *AppError {
	return Newf(CodeInvalidRange, "invalid rank range: min_rank %d > max_rank %d", minRank, maxRank)
}

func DegenerateMetric(metric string) *AppError {
	return Newf(CodeDegenerateMetric, "metric %s has zero spread, normalized values are undefined", metric)
}
