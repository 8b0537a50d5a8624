package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"dashviz/domain/core"
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. Domain errors keep a code
// derived from their sentinel.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    codeFor(err),
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
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
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code of an AppError or of a known domain
// error, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if code := codeFor(err); code != CodeInternalError {
		return code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeParseError        = "PARSE_ERROR"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeUnknownFunction   = "UNKNOWN_FUNCTION"
	CodeColumnType        = "COLUMN_TYPE"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
)

func codeFor(err error) string {
	switch {
	case stderrors.Is(err, core.ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case stderrors.Is(err, core.ErrParse):
		return CodeParseError
	case stderrors.Is(err, core.ErrColumnNotFound):
		return CodeColumnNotFound
	case stderrors.Is(err, core.ErrUnknownFunction):
		return CodeUnknownFunction
	case stderrors.Is(err, core.ErrColumnType):
		return CodeColumnType
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	}
	return CodeInternalError
}

// HTTPStatus maps an error onto the status code the API reports.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeParseError, CodeColumnNotFound, CodeUnknownFunction, CodeColumnType,
		CodeInvalidInput, CodeValidationError:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

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

func PayloadTooLarge(message string) *AppError {
	return New(CodePayloadTooLarge, message)
}
