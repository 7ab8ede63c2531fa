// Package errors carries the coded application error used at adapter
// boundaries. Domain-level sentinels live in domain/core; this package is
// for infrastructure failures that callers classify by code.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an AppError for boundary handling
type Code string

const (
	CodeConfigInvalid Code = "CONFIG_INVALID"
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeExportFailed  Code = "EXPORT_FAILED"
	CodeInternalError Code = "INTERNAL_ERROR"
)

// AppError pairs a classification code with a message and optional cause
type AppError struct {
	Code    Code
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

// New creates an AppError with no cause
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to an error. An AppError cause keeps its code; anything
// else is classified internal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	var app *AppError
	if stderrors.As(err, &app) {
		code = app.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// HasCode reports whether any error in the chain carries the code
func HasCode(err error, code Code) bool {
	var app *AppError
	return stderrors.As(err, &app) && app.Code == code
}

// ConfigInvalid flags a configuration problem found at load time
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError wraps a failed database operation
func DatabaseError(op string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: fmt.Sprintf("database %s failed", op),
		Cause:   cause,
	}
}

// ExportFailed wraps a failed report artifact write
func ExportFailed(artifact string, cause error) *AppError {
	return &AppError{
		Code:    CodeExportFailed,
		Message: fmt.Sprintf("failed to export %s", artifact),
		Cause:   cause,
	}
}
