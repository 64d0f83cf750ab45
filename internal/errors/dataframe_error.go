// Package errors provides the error types returned by table operations.
// Each failure kind is its own struct so callers can match it with errors.As,
// and DataFrameError adds the name of the operation that failed.
package errors

import (
	stderrors "errors"
	"fmt"
)

// DataFrameError attaches operation context to a failure.
type DataFrameError struct {
	Op      string // Operation name (e.g., "Sort", "Filter", "InnerJoin")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *DataFrameError) Is(target error) bool {
	if df, ok := target.(*DataFrameError); ok {
		return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
	}
	return false
}

// Wrap records op as the failing operation of cause. A nil cause yields nil,
// and an error that already carries an operation is returned unchanged so the
// innermost operation is reported.
func Wrap(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var existing *DataFrameError
	if stderrors.As(cause, &existing) {
		return cause
	}
	return &DataFrameError{
		Op:      op,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// WrapColumn is Wrap with the column the failure concerns.
func WrapColumn(op, column string, cause error) error {
	if cause == nil {
		return nil
	}
	var existing *DataFrameError
	if stderrors.As(cause, &existing) {
		return cause
	}
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// As is errors.As, re-exported so callers importing this package need not
// alias the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
