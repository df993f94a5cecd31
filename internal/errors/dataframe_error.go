// Package errors provides standardized error types for DataFrame operations.
// This package defines DataFrameError for consistent error handling across
// all public APIs, with an error kind, operation context and error wrapping
// support.
package errors

import (
	"fmt"
)

// Kind classifies a DataFrameError. Callers branch on the kind, never on the message.
type Kind int

const (
	// KindInternal is used for failures that do not fit any other kind
	KindInternal Kind = iota
	// KindBoundary indicates row navigation before the first or past the last row
	KindBoundary
	// KindNameNotFound indicates an unknown column name
	KindNameNotFound
	// KindIncompatibleType covers length mismatches, kind mismatches and duplicate names
	KindIncompatibleType
	// KindUnconvertableType indicates a host value with no scalar mapping
	KindUnconvertableType
	// KindZeroDimensionalArray is reserved for degenerate array shapes
	KindZeroDimensionalArray
	// KindUnsupported indicates an accessor or operation that is not available
	KindUnsupported
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindBoundary:
		return "BoundaryError"
	case KindNameNotFound:
		return "NameNotFound"
	case KindIncompatibleType:
		return "IncompatibleType"
	case KindUnconvertableType:
		return "UnconvertableType"
	case KindZeroDimensionalArray:
		return "ZeroDimensionalArray"
	case KindUnsupported:
		return "Unsupported"
	default:
		return "Internal"
	}
}

// DataFrameError represents standardized errors across all DataFrame operations
type DataFrameError struct {
	Kind    Kind   // Error classification
	Op      string // Operation name (e.g., "AddRow", "Filter", "BindRows")
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

// Is implements error equality checking for errors.Is().
// A sentinel (no Op) matches every error of the same kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" {
		return e.Kind == df.Kind
	}
	return e.Kind == df.Kind && e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// Sentinels for errors.Is checks by kind
var (
	ErrBoundary             = &DataFrameError{Kind: KindBoundary}
	ErrNameNotFound         = &DataFrameError{Kind: KindNameNotFound}
	ErrIncompatibleType     = &DataFrameError{Kind: KindIncompatibleType}
	ErrUnconvertableType    = &DataFrameError{Kind: KindUnconvertableType}
	ErrZeroDimensionalArray = &DataFrameError{Kind: KindZeroDimensionalArray}
	ErrUnsupported          = &DataFrameError{Kind: KindUnsupported}
)

// KindOf extracts the kind of err, or KindInternal when err is not a DataFrameError
func KindOf(err error) Kind {
	for err != nil {
		if df, ok := err.(*DataFrameError); ok {
			return df.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindInternal
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindNameNotFound,
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewBoundaryError creates an error for row navigation outside [0, rows)
func NewBoundaryError(op string, index, rows int) *DataFrameError {
	msg := fmt.Sprintf("index %d is after the last row (%d rows)", index, rows)
	if index < 0 {
		msg = fmt.Sprintf("index %d is before the first row", index)
	}
	return &DataFrameError{
		Kind:    KindBoundary,
		Op:      op,
		Message: msg,
	}
}

// NewIncompatibleTypeError creates a generic structural or type error
func NewIncompatibleTypeError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIncompatibleType,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewTypeMismatchError creates an error for a kind mismatch between two values or columns
func NewTypeMismatchError(op, column, expected, actual string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIncompatibleType,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("expected %s, got %s", expected, actual),
	}
}

// NewLengthMismatchError creates an error for columns of the wrong length
func NewLengthMismatchError(op, column string, expected, actual int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIncompatibleType,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("expected length %d, got %d", expected, actual),
	}
}

// NewDuplicateColumnError creates an error for a column name that is already taken
func NewDuplicateColumnError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIncompatibleType,
		Op:      op,
		Column:  column,
		Message: "column already exists",
	}
}

// NewUnconvertableTypeError creates an error for a host value that has no scalar mapping
func NewUnconvertableTypeError(op, column string, value any) *DataFrameError {
	return &DataFrameError{
		Kind:    KindUnconvertableType,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("don't know how to convert a %T", value),
	}
}

// NewUnsupportedError creates an error for operations that are not available
func NewUnsupportedError(op, what string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindUnsupported,
		Op:      op,
		Message: fmt.Sprintf("unsupported: %s", what),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIncompatibleType,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Wrap attaches operation context to cause while keeping its kind
func Wrap(op, column string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindOf(cause),
		Op:      op,
		Column:  column,
		Message: cause.Error(),
		Cause:   cause,
	}
}
