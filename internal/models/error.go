package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so handlers can map them to HTTP statuses
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_FAILED"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindUnavailable    ErrorKind = "UNAVAILABLE"
	KindAuthentication ErrorKind = "UNAUTHORIZED"
	KindAuthorization  ErrorKind = "FORBIDDEN"
	KindConflict       ErrorKind = "CONFLICT"
	KindServer         ErrorKind = "INTERNAL_SERVER_ERROR"
)

// Status returns the HTTP status code for the kind.
// Conflicts are reported as 400, which is what the mobile client expects
// for a duplicate email.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation, KindUnavailable, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a user-facing message together with its kind and cause
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrNotFound) works
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks
var (
	ErrValidation     = &AppError{Kind: KindValidation}
	ErrNotFound       = &AppError{Kind: KindNotFound}
	ErrUnavailable    = &AppError{Kind: KindUnavailable}
	ErrAuthentication = &AppError{Kind: KindAuthentication}
	ErrAuthorization  = &AppError{Kind: KindAuthorization}
	ErrConflict       = &AppError{Kind: KindConflict}
	ErrServer         = &AppError{Kind: KindServer}
)

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewUnavailableError(message string) *AppError {
	return &AppError{Kind: KindUnavailable, Message: message}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewServerError wraps an unexpected failure. The message shown to clients
// stays generic, err is kept for logs.
func NewServerError(err error) *AppError {
	return &AppError{Kind: KindServer, Message: "Server error", Err: err}
}

// AsAppError returns err as an AppError, wrapping unknown errors as server errors
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewServerError(err)
}

// APIError is the JSON body returned on every error path
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewAPIError builds the error body for err. detail is only filled
// when includeDetail is set (development).
func NewAPIError(err *AppError, includeDetail bool) APIError {
	body := APIError{
		Success: false,
		Message: err.Message,
		Code:    string(err.Kind),
	}
	if includeDetail && err.Err != nil {
		body.Error = err.Err.Error()
	}
	return body
}
