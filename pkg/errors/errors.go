// Package errors provides coded application errors for the blog services.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported standard library helpers so callers only import one errors package.
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error codes used across the service boundary.
const (
	// ErrDataUnavailable marks persistence failures. Fatal to the request.
	ErrDataUnavailable = "data_unavailable"

	// ErrCacheUnavailable marks cache store failures. Never fatal; the
	// listing layer degrades to the persistence path.
	ErrCacheUnavailable = "cache_unavailable"

	// ErrNotFound marks lookups for records that do not exist.
	ErrNotFound = "not_found"

	// ErrInvalidInput marks input that failed validation.
	ErrInvalidInput = "invalid_input"

	// ErrInternal is the fallback code for wrapped errors without one.
	ErrInternal = "internal"
)

// Error extends the basic error interface with a stable code.
type Error interface {
	error
	Code() string
	Unwrap() error
}

// AppError is the default Error implementation.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *AppError) Code() string {
	return e.code
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NewAppError creates an application error with the given code.
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// Wrap wraps err with a message, preserving the code of an existing AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf returns the code carried by err, or ErrInternal when err carries none.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}

	return ErrInternal
}
