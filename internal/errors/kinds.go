package errors

import (
	"fmt"
	"strings"

	"github.com/paveg/tabeline/internal/datatype"
)

// NonexistentColumnError reports a reference to a column the frame lacks.
type NonexistentColumnError struct {
	Column string
}

func (e *NonexistentColumnError) Error() string {
	return fmt.Sprintf("column %s does not exist", e.Column)
}

// DuplicateColumnError reports a column named more than once.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %s appears more than once", e.Column)
}

// RenameExistingError reports a rename onto a column that is kept.
type RenameExistingError struct {
	Old string
	New string
}

func (e *RenameExistingError) Error() string {
	return fmt.Sprintf("cannot rename %s to %s because %s already exists", e.Old, e.New, e.New)
}

// GroupColumnError reports a disallowed use of a group column.
type GroupColumnError struct {
	Column string
}

func (e *GroupColumnError) Error() string {
	return fmt.Sprintf("column %s is a group column", e.Column)
}

// HasGroupsError reports an operation that needs an ungrouped frame.
type HasGroupsError struct {
	Groups [][]string
}

func (e *HasGroupsError) Error() string {
	return fmt.Sprintf("data frame must not have groups, but has groups %s", formatLevels(e.Groups))
}

// NoGroupsError reports an operation that needs at least one group level.
type NoGroupsError struct{}

func (e *NoGroupsError) Error() string {
	return "data frame has no groups"
}

// ColumnAlreadyExistsError reports a new column whose name is taken.
type ColumnAlreadyExistsError struct {
	Column string
}

func (e *ColumnAlreadyExistsError) Error() string {
	return fmt.Sprintf("column %s already exists", e.Column)
}

// IndexOutOfBoundsError reports a row index outside the frame.
type IndexOutOfBoundsError struct {
	Index      int
	Length     int
	OneIndexed bool
}

func (e *IndexOutOfBoundsError) Error() string {
	if e.OneIndexed {
		return fmt.Sprintf("index %d is out of bounds for one-indexed length %d", e.Index, e.Length)
	}
	return fmt.Sprintf("index %d is out of bounds for length %d", e.Index, e.Length)
}

// GroupIndexOutOfBoundsError reports a per-group index larger than a group.
type GroupIndexOutOfBoundsError struct {
	Index      int
	Length     int
	OneIndexed bool
}

func (e *GroupIndexOutOfBoundsError) Error() string {
	if e.OneIndexed {
		return fmt.Sprintf("index %d is out of bounds for a group of one-indexed length %d", e.Index, e.Length)
	}
	return fmt.Sprintf("index %d is out of bounds for a group of length %d", e.Index, e.Length)
}

// UnmatchedColumnsError reports frames concatenated with different columns.
type UnmatchedColumnsError struct {
	Expected []string
	Actual   []string
}

func (e *UnmatchedColumnsError) Error() string {
	return fmt.Sprintf("expected columns [%s], but found [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Actual, ", "))
}

// UnmatchedGroupLevelsError reports frames concatenated with different groups.
type UnmatchedGroupLevelsError struct {
	Expected [][]string
	Actual   [][]string
}

func (e *UnmatchedGroupLevelsError) Error() string {
	return fmt.Sprintf("expected group levels %s, but found %s", formatLevels(e.Expected), formatLevels(e.Actual))
}

// UnmatchedHeightError reports frames combined column-wise with different heights.
type UnmatchedHeightError struct {
	Expected int
	Actual   int
}

func (e *UnmatchedHeightError) Error() string {
	return fmt.Sprintf("expected height %d, but found height %d", e.Expected, e.Actual)
}

// IncompatibleLengthError reports a column whose length differs from the frame height.
type IncompatibleLengthError struct {
	Expected int
	Actual   int
	Column   string
}

func (e *IncompatibleLengthError) Error() string {
	return fmt.Sprintf("expected column %s to have length %d, but it has length %d", e.Column, e.Expected, e.Actual)
}

// IncompatibleElementTypeError reports a sequence element that does not fit
// the array being built.
type IncompatibleElementTypeError struct {
	ExpectedTypes []datatype.DataType
	Value         any
	Index         int
}

func (e *IncompatibleElementTypeError) Error() string {
	names := make([]string, len(e.ExpectedTypes))
	for i, t := range e.ExpectedTypes {
		names[i] = t.String()
	}
	return fmt.Sprintf("expected all elements to have type %s, but got %v of type %T at index %d",
		strings.Join(names, " or "), e.Value, e.Value, e.Index)
}

// IncompatibleTypeError reports an operation applied to operand types it
// does not support.
type IncompatibleTypeError struct {
	Operation string
	Types     []datatype.DataType
}

func (e *IncompatibleTypeError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.String()
	}
	return fmt.Sprintf("%s is not defined for types (%s)", e.Operation, strings.Join(names, ", "))
}

// NotSameError reports a group that same() found to hold several values.
type NotSameError struct {
	Values []any
}

func (e *NotSameError) Error() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		if v == nil {
			parts[i] = "null"
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("expected all values to be the same, but found [%s]", strings.Join(parts, ", "))
}

// CastError reports an element that cannot be converted to the target type.
type CastError struct {
	Value  any
	Target datatype.DataType
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot convert %v to %s", e.Value, e.Target)
}

// ParseError reports a formula that is not valid source.
type ParseError struct {
	Source   string
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %q at position %d: %s", e.Source, e.Position, e.Message)
}

// UnknownFunctionError reports a call to a function that does not exist.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %s", e.Name)
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Name   string
	Min    int
	Max    int // negative for variadic functions
	Actual int
}

func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("%s takes at least %d arguments, but got %d", e.Name, e.Min, e.Actual)
	case e.Min == e.Max:
		return fmt.Sprintf("%s takes %d arguments, but got %d", e.Name, e.Min, e.Actual)
	default:
		return fmt.Sprintf("%s takes %d to %d arguments, but got %d", e.Name, e.Min, e.Max, e.Actual)
	}
}

// InvalidArgumentError reports an argument whose values a function rejects.
type InvalidArgumentError struct {
	Function string
	Message  string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}

func formatLevels(levels [][]string) string {
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = "[" + strings.Join(level, ", ") + "]"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
