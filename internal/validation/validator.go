// Package validation provides the column checks shared by table operators.
// Every operator validates its arguments with these before touching data, so
// the first failure is reported and no partial result is built.
package validation

import (
	"github.com/paveg/tabeline/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider describes the columns and group columns of a table.
type ColumnProvider interface {
	HasColumn(name string) bool
	ColumnNames() []string
	GroupNames() []string
}

// UniqueValidator rejects a name listed twice.
type UniqueValidator struct {
	names []string
	op    string
}

// NewUniqueValidator creates a validator for distinct names
func NewUniqueValidator(op string, names ...string) *UniqueValidator {
	return &UniqueValidator{names: names, op: op}
}

// Validate fails with DuplicateColumnError on the first repeated name.
func (v *UniqueValidator) Validate() error {
	seen := make(map[string]bool, len(v.names))
	for _, name := range v.names {
		if seen[name] {
			return errors.WrapColumn(v.op, name, &errors.DuplicateColumnError{Column: name})
		}
		seen[name] = true
	}
	return nil
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
			return errors.WrapColumn(v.op, column, &errors.NonexistentColumnError{Column: column})
		}
	}
	return nil
}

// UngroupedValidator rejects group columns.
type UngroupedValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewUngroupedValidator creates a validator that forbids group columns
func NewUngroupedValidator(df ColumnProvider, op string, columns ...string) *UngroupedValidator {
	return &UngroupedValidator{df: df, columns: columns, op: op}
}

// Validate fails with GroupColumnError on the first group column.
func (v *UngroupedValidator) Validate() error {
	groups := make(map[string]bool)
	for _, name := range v.df.GroupNames() {
		groups[name] = true
	}
	for _, column := range v.columns {
		if groups[column] {
			return errors.WrapColumn(v.op, column, &errors.GroupColumnError{Column: column})
		}
	}
	return nil
}

// AbsentValidator requires that names are not yet columns.
type AbsentValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewAbsentValidator creates a validator for new column names
func NewAbsentValidator(df ColumnProvider, op string, columns ...string) *AbsentValidator {
	return &AbsentValidator{df: df, columns: columns, op: op}
}

// Validate fails with ColumnAlreadyExistsError on the first existing name.
func (v *AbsentValidator) Validate() error {
	for _, column := range v.columns {
		if v.df.HasColumn(column) {
			return errors.WrapColumn(v.op, column, &errors.ColumnAlreadyExistsError{Column: column})
		}
	}
	return nil
}

// IndexValidator validates index bounds
type IndexValidator struct {
	indexes    []int
	length     int
	oneIndexed bool
	op         string
}

// NewIndexValidator creates a validator for positional indexes. One-indexed
// positions are valid in [1, length]; zero-indexed ones in [0, length).
func NewIndexValidator(op string, length int, oneIndexed bool, indexes ...int) *IndexValidator {
	return &IndexValidator{
		indexes:    indexes,
		length:     length,
		oneIndexed: oneIndexed,
		op:         op,
	}
}

// Validate checks if every index is within bounds
func (v *IndexValidator) Validate() error {
	lo, hi := 0, v.length-1
	if v.oneIndexed {
		lo, hi = 1, v.length
	}
	for _, index := range v.indexes {
		if index < lo || index > hi {
			return errors.Wrap(v.op, &errors.IndexOutOfBoundsError{Index: index, Length: v.length, OneIndexed: v.oneIndexed})
		}
	}
	return nil
}

// LengthValidator validates array length consistency
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
		return errors.WrapColumn(v.op, v.column, &errors.IncompatibleLengthError{
			Expected: v.expected,
			Actual:   v.actual,
			Column:   v.column,
		})
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

// ValidateColumns checks that columns are distinct and exist.
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewCompoundValidator(
		NewUniqueValidator(op, columns...),
		NewColumnValidator(df, op, columns...),
	).Validate()
}

// ValidateUngroupedColumns checks that columns are distinct, exist, and are
// not group columns.
func ValidateUngroupedColumns(df ColumnProvider, op string, columns ...string) error {
	return NewCompoundValidator(
		NewUniqueValidator(op, columns...),
		NewColumnValidator(df, op, columns...),
		NewUngroupedValidator(df, op, columns...),
	).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, column string) error {
	return NewLengthValidator(expected, actual, op, column).Validate()
}

// ValidateIndexes is a convenience function for index validation
func ValidateIndexes(op string, length int, oneIndexed bool, indexes ...int) error {
	return NewIndexValidator(op, length, oneIndexed, indexes...).Validate()
}
