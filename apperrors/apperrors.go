// Package apperrors defines the error codes surfaced by the API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrValidation            Code = "VALIDATION"
	ErrUnauthorized          Code = "UNAUTHORIZED"
	ErrForbidden             Code = "FORBIDDEN"
	ErrNotFound              Code = "NOT_FOUND"
	ErrProtected             Code = "PROTECTED"
	ErrConflict              Code = "CONFLICT"
	ErrClassifierUnavailable Code = "CLASSIFIER_UNAVAILABLE"
	ErrInternal              Code = "INTERNAL"
)

// AppError is an error with a code, a human message and optional per-field messages.
type AppError struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for the error code.
func (e *AppError) HTTPStatus() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

var messages = map[Code]string{
	ErrValidation:            "invalid input",
	ErrUnauthorized:          "authentication required",
	ErrForbidden:             "you do not have permission to perform this action",
	ErrNotFound:              "resource not found",
	ErrProtected:             "resource is referenced by other records and cannot be deleted",
	ErrConflict:              "resource already exists",
	ErrClassifierUnavailable: "severity classifier is unavailable, please try again",
	ErrInternal:              "internal server issue, please try again",
}

var statusByCode = map[Code]int{
	ErrValidation:            http.StatusBadRequest,
	ErrUnauthorized:          http.StatusUnauthorized,
	ErrForbidden:             http.StatusForbidden,
	ErrNotFound:              http.StatusNotFound,
	ErrProtected:             http.StatusConflict,
	ErrConflict:              http.StatusConflict,
	ErrClassifierUnavailable: http.StatusServiceUnavailable,
	ErrInternal:              http.StatusInternalServerError,
}

// New creates an AppError with the default message for code.
func New(code Code) *AppError {
	return &AppError{Code: code, Message: messageFor(code)}
}

// Newf creates an AppError with a custom message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause.
func Wrap(code Code, err error) *AppError {
	return &AppError{Code: code, Message: messageFor(code), Err: err}
}

// Validation builds a VALIDATION error carrying a single field message.
func Validation(field, message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// ValidationFields builds a VALIDATION error from several field messages.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{Code: ErrValidation, Message: messages[ErrValidation], Fields: fields}
}

// Forbidden is the generic permission-denied signal.
func Forbidden() *AppError {
	return New(ErrForbidden)
}

// NotFound reports a missing resource by name.
func NotFound(resource string) *AppError {
	return Newf(ErrNotFound, "%s not found", resource)
}

// Protected reports a delete blocked by referential protection.
func Protected(format string, args ...interface{}) *AppError {
	return Newf(ErrProtected, format, args...)
}

// As extracts an AppError from err, wrapping unknown errors as INTERNAL.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternal, err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func messageFor(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[ErrInternal]
}
