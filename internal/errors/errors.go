package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"bayesplay/domain/core"
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
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeDomainError          = "DOMAIN_ERROR"
	CodeNonFinite            = "NON_FINITE"
	CodeIntegrationFailed    = "INTEGRATION_FAILED"
	CodeDegeneratePosterior  = "DEGENERATE_POSTERIOR"
	CodeIncompatibleEvidence = "INCOMPATIBLE_EVIDENCE"
	CodeTimeout              = "TIMEOUT"
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

// FromDomain classifies an error returned by the domain packages. Errors that
// already carry a code are returned unchanged.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	code := CodeInternalError
	switch {
	case core.IsValidationError(err):
		code = CodeValidationError
	case stderrors.Is(err, core.ErrDomain):
		code = CodeDomainError
	case stderrors.Is(err, core.ErrNonFinite):
		code = CodeNonFinite
	case stderrors.Is(err, core.ErrInvalidInput):
		code = CodeInvalidInput
	case core.IsIntegrationError(err):
		code = CodeIntegrationFailed
	case core.IsDegeneratePosteriorError(err):
		code = CodeDegeneratePosterior
	case stderrors.Is(err, core.ErrIncompatibleEvidence):
		code = CodeIncompatibleEvidence
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		code = CodeTimeout
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code string) int {
	switch code {
	case CodeValidationError, CodeIntegrationFailed, CodeDegeneratePosterior, CodeIncompatibleEvidence:
		return http.StatusUnprocessableEntity
	case CodeInvalidInput, CodeDomainError, CodeNonFinite:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
