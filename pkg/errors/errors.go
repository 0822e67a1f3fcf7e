package errors

import (
	"errors"
	"fmt"
	"net/http"

	"fooddelivery/domain/payment"
	"fooddelivery/domain/shared"
)

// ErrorCode is the machine readable error class returned to clients.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeInvalidState   ErrorCode = "INVALID_STATE"
	CodeGateway        ErrorCode = "GATEWAY_ERROR"
)

// AppError is an error ready to be rendered by the API layer.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the code to a status.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError { return New(CodeBadRequest, message) }

func NotFound(message string) *AppError { return New(CodeNotFound, message) }

func Internal(message string) *AppError { return New(CodeInternal, message) }

func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }

func Forbidden(message string) *AppError { return New(CodeForbidden, message) }

func Conflict(message string) *AppError { return New(CodeConflict, message) }

func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }

func Validation(message string) *AppError { return New(CodeValidation, message) }

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError classifies err by its sentinel. Unknown errors become
// INTERNAL_ERROR with a generic message; the cause stays in Err for logging.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) {
		return &AppError{
			Code:    CodeGateway,
			Message: "payment gateway unavailable: " + gwErr.Message,
			Details: map[string]any{"provider": gwErr.Provider, "transient": gwErr.Transient},
			Err:     err,
		}
	}

	code := CodeInternal
	switch {
	case errors.Is(err, shared.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, shared.ErrInvalidState):
		code = CodeInvalidState
	case errors.Is(err, shared.ErrInvalidInput):
		code = CodeValidation
	case errors.Is(err, shared.ErrConflict):
		code = CodeConflict
	case errors.Is(err, shared.ErrUnauthorized):
		code = CodeUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		code = CodeForbidden
	case errors.Is(err, payment.ErrGateway):
		code = CodeGateway
	}
	if code == CodeInternal {
		return Wrap(err, CodeInternal, "internal server error")
	}

	out := &AppError{Code: code, Message: err.Error(), Err: err}
	if de, ok := shared.AsDomainError(err); ok && code == CodeNotFound {
		out.Details = map[string]any{"entity": de.Entity, "field": de.Field, "value": de.Value}
	}
	return out
}
