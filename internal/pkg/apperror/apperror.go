package apperror

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeDecodeFailed     Code = "DECODE_FAILED"
	CodeWriteFaulted     Code = "WRITE_FAULTED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// AppError is the failure envelope every operation surfaces. Ownership
// misses fail closed as NOT_FOUND so callers cannot distinguish another
// tenant's session from a missing one.
type AppError struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func Validation(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidationFailed,
		Message: "request validation failed",
		Fields:  fields,
	}
}

// DecodeFailed marks a persisted message whose content no longer parses.
// This is an internal fault, never a user input error.
func DecodeFailed(messageId uuid.UUID, err error) *AppError {
	return &AppError{
		Code:    CodeDecodeFailed,
		Message: fmt.Sprintf("failed to parse message %s", messageId),
		Err:     err,
	}
}

// WriteFaulted marks a write that should have landed a row but did not,
// even though its preconditions were satisfied.
func WriteFaulted(operation string) *AppError {
	return &AppError{
		Code:    CodeWriteFaulted,
		Message: fmt.Sprintf("%s reported no affected row", operation),
	}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf extracts the taxonomy code from any error chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// As is a convenience for middleware that needs the full envelope.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
