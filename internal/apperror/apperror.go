// Package apperror defines the error kinds shared by every layer of the API.
//
// Services tag failures with one of the sentinel kinds below; handlers map the
// kind to an HTTP status. Errors that carry no kind (storage I/O failures,
// driver errors) are treated as internal errors by the boundary.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("duplicate")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDeleteFailed = errors.New("delete failed")
)

// Machine-readable codes returned to clients in the "code" field.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION"
	CodeDuplicate    = "DUPLICATE"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeDeleteError  = "DELETE_ERROR"
	CodeInternal     = "INTERNAL"
)

type AppError struct {
	Err     error  // kind sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports an association or unique value that already exists.
// HTTP handlers map this to 409 Conflict.
func Duplicate(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when credentials are missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// DeleteFailed is returned when a delete statement reported no effect on a
// row the caller had just confirmed to exist.
func DeleteFailed(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrDeleteFailed,
		Message: fmt.Sprintf("failed to delete %s with id %v", resource, id),
	}
}

// Code returns the taxonomy tag carried by err, or CodeInternal when err has
// no kind attached.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConflict):
		return CodeDuplicate
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrDeleteFailed):
		return CodeDeleteError
	default:
		return CodeInternal
	}
}
