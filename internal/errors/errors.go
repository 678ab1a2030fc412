package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"autorisk/domain/core"
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

// Wrap wraps an error with additional context, keeping the code of an
// AppError anywhere in the chain
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(FromDomain(err)),
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error chain contains an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the first AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// FromDomain classifies a domain sentinel error into an AppError. AppErrors
// pass through unchanged; unrecognised errors become INTERNAL_ERROR.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	code := CodeInternalError
	switch {
	case core.IsModelNotFound(err):
		code = CodeModelNotFound
	case core.IsNotFoundError(err):
		code = CodeNotFound
	case core.IsNotRegistered(err):
		code = CodeNotRegistered
	case core.IsSourceUnavailable(err):
		code = CodeSourceUnavailable
	case stderrors.Is(err, core.ErrInvalidQuery):
		code = CodeInvalidInput
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error's code to a response status
func HTTPStatus(err error) int {
	switch GetCode(FromDomain(err)) {
	case CodeNotFound, CodeModelNotFound, CodeNotRegistered:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeSourceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeNotFound          = "NOT_FOUND"
	CodeModelNotFound     = "MODEL_NOT_FOUND"
	CodeNotRegistered     = "NOT_REGISTERED"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnknown           = "UNKNOWN"
)

// ConfigInvalid reports a configuration value that failed validation
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InvalidInput reports a malformed request parameter
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
