// Package validation provides input validation utilities for DataFrame operations.
// Validators check a precondition and return a typed DataFrameError, so that
// structural operations can reject bad input before they mutate anything.
package validation

import (
	"fmt"

	"github.com/paveg/rframe/internal/errors"
	"github.com/paveg/rframe/internal/scalar"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Names() []string
	NRow() int
	NCol() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// UniqueNameValidator checks that new column names are not already taken
type UniqueNameValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewUniqueNameValidator creates a validator for columns about to be added
func NewUniqueNameValidator(df ColumnProvider, op string, columns ...string) *UniqueNameValidator {
	return &UniqueNameValidator{df: df, columns: columns, op: op}
}

// Validate rejects names that exist in the frame or repeat within the list
func (v *UniqueNameValidator) Validate() error {
	seen := make(map[string]struct{}, len(v.columns))
	for _, column := range v.columns {
		if _, dup := seen[column]; dup || v.df.HasColumn(column) {
			return errors.NewDuplicateColumnError(v.op, column)
		}
		seen[column] = struct{}{}
	}
	return nil
}

// LengthValidator validates column length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	column   string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, column string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		column:   column,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.NewLengthMismatchError(v.op, v.column, v.expected, v.actual)
	}
	return nil
}

// KindValidator checks that two column kinds can be combined. An untyped
// side is compatible with every kind.
type KindValidator struct {
	expected scalar.Kind
	actual   scalar.Kind
	op       string
	column   string
}

// NewKindValidator creates a validator for kind compatibility
func NewKindValidator(expected, actual scalar.Kind, op, column string) *KindValidator {
	return &KindValidator{expected: expected, actual: actual, op: op, column: column}
}

// Validate checks if the kinds are compatible
func (v *KindValidator) Validate() error {
	if v.expected == v.actual || v.expected == scalar.KindUntyped || v.actual == scalar.KindUntyped {
		return nil
	}
	return errors.NewTypeMismatchError(v.op, v.column, v.expected.String(), v.actual.String())
}

// BoundsValidator validates a half-open row range against the row count
type BoundsValidator struct {
	start int
	end   int
	rows  int
	op    string
}

// NewBoundsValidator creates a validator for [start, end) over rows
func NewBoundsValidator(start, end, rows int, op string) *BoundsValidator {
	return &BoundsValidator{start: start, end: end, rows: rows, op: op}
}

// Validate checks 0 <= start <= end <= rows
func (v *BoundsValidator) Validate() error {
	switch {
	case v.start < 0:
		return errors.NewBoundaryError(v.op, v.start, v.rows)
	case v.end > v.rows:
		return errors.NewBoundaryError(v.op, v.end, v.rows)
	case v.start > v.end:
		return &errors.DataFrameError{
			Kind:    errors.KindBoundary,
			Op:      v.op,
			Message: fmt.Sprintf("start %d is after end %d", v.start, v.end),
		}
	}
	return nil
}

// IndexValidator validates a single row index
type IndexValidator struct {
	index int
	rows  int
	op    string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, rows int, op string) *IndexValidator {
	return &IndexValidator{index: index, rows: rows, op: op}
}

// Validate checks if index is within [0, rows)
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.rows {
		return errors.NewBoundaryError(v.op, v.index, v.rows)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateAll runs validators in order and returns the first error
func ValidateAll(validators ...Validator) error {
	return NewCompoundValidator(validators...).Validate()
}

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, column string) error {
	return NewLengthValidator(expected, actual, op, column).Validate()
}

// ValidateKind is a convenience function for kind compatibility
func ValidateKind(expected, actual scalar.Kind, op, column string) error {
	return NewKindValidator(expected, actual, op, column).Validate()
}

// ValidateBounds is a convenience function for row range validation
func ValidateBounds(start, end, rows int, op string) error {
	return NewBoundsValidator(start, end, rows, op).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, rows int, op string) error {
	return NewIndexValidator(index, rows, op).Validate()
}
