package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("service unavailable")
)

// AppError carries a user-facing message on top of one of the sentinel kinds above.
type AppError struct {
	Kind    error
	Message string
	Details []string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func NewValidationError(format string, args ...any) error {
	return &AppError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NewValidationErrors(details []string) error {
	return &AppError{Kind: ErrValidation, Message: "Validation errors", Details: details}
}

func NewNotFoundError(format string, args ...any) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionError(format string, args ...any) error {
	return &AppError{Kind: ErrPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &AppError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...any) error {
	return &AppError{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func NewUnavailableError(format string, args ...any) error {
	return &AppError{Kind: ErrUnavailable, Message: fmt.Sprintf(format, args...)}
}
