// Package diff compares arrays and data frames element by element and
// reports every difference found, with optional tolerance for floats.
package diff

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/config"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/datatype"
)

// Tolerance bounds how far floats may drift before they count as different.
// A float differs only when it exceeds both bounds. The zero value requires
// exact equality.
type Tolerance struct {
	Relative float64
	Absolute float64
}

// DefaultTolerance returns the tolerance of the global configuration.
func DefaultTolerance() Tolerance {
	cfg := config.GetGlobalConfig()
	return Tolerance{Relative: cfg.RelativeTolerance, Absolute: cfg.AbsoluteTolerance}
}

func (t Tolerance) floatsEqual(actual, expected float64) bool {
	actualNaN, expectedNaN := math.IsNaN(actual), math.IsNaN(expected)
	switch {
	case actualNaN || expectedNaN:
		return actualNaN && expectedNaN
	case actual == expected:
		return true
	case math.IsInf(actual, 0) || math.IsInf(expected, 0):
		return false
	}
	absolute := math.Abs(actual - expected)
	if absolute <= t.Absolute {
		return true
	}
	return absolute/math.Abs(expected) <= t.Relative
}

// ArrayDifference is one way two arrays differ.
type ArrayDifference interface {
	fmt.Stringer
	arrayDifference()
}

// CountDifference reports arrays of different lengths.
type CountDifference struct {
	Actual   int
	Expected int
}

func (d CountDifference) String() string {
	return fmt.Sprintf("expected %d elements, but found %d elements", d.Expected, d.Actual)
}

// TypeDifference reports arrays of different types.
type TypeDifference struct {
	Actual   datatype.DataType
	Expected datatype.DataType
}

func (d TypeDifference) String() string {
	return fmt.Sprintf("expected elements of type %s, but found elements of type %s", d.Expected, d.Actual)
}

// ValueDifference reports one differing element. A nil value is null.
type ValueDifference struct {
	Index    int
	Actual   any
	Expected any
}

func (d ValueDifference) String() string {
	return fmt.Sprintf("at index %d, expected value %s, but found value %s",
		d.Index, formatScalar(d.Expected), formatScalar(d.Actual))
}

func (CountDifference) arrayDifference() {}
func (TypeDifference) arrayDifference()  {}
func (ValueDifference) arrayDifference() {}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	}
	return array.FormatValue(v)
}

// Arrays lists the differences between actual and expected. When the lengths
// or types differ, only those differences are reported.
func Arrays(actual, expected *array.Array, tol Tolerance) []ArrayDifference {
	var differences []ArrayDifference
	if actual.Len() != expected.Len() {
		differences = append(differences, CountDifference{Actual: actual.Len(), Expected: expected.Len()})
	}
	if actual.DataType() != expected.DataType() {
		differences = append(differences, TypeDifference{Actual: actual.DataType(), Expected: expected.DataType()})
	}
	if len(differences) > 0 {
		return differences
	}

	float := actual.DataType().IsFloat()
	for i := range actual.Len() {
		actualNull, expectedNull := actual.IsNull(i), expected.IsNull(i)
		var equal bool
		switch {
		case actualNull || expectedNull:
			equal = actualNull && expectedNull
		case float:
			equal = tol.floatsEqual(actual.Float(i), expected.Float(i))
		default:
			equal = array.ElementsEqual(actual, i, expected, i)
		}
		if !equal {
			differences = append(differences, ValueDifference{Index: i, Actual: actual.Item(i), Expected: expected.Item(i)})
		}
	}
	return differences
}

// DataFrameDifference is one way two data frames differ.
type DataFrameDifference interface {
	fmt.Stringer
	dataFrameDifference()
}

// HeightDifference reports frames of different heights.
type HeightDifference struct {
	Actual   int
	Expected int
}

func (d HeightDifference) String() string {
	return fmt.Sprintf("expected height of %d, but found height of %d", d.Expected, d.Actual)
}

// WidthDifference reports frames of different widths.
type WidthDifference struct {
	Actual   int
	Expected int
}

func (d WidthDifference) String() string {
	return fmt.Sprintf("expected width of %d, but found width of %d", d.Expected, d.Actual)
}

// GroupsDifference reports frames with different group levels.
type GroupsDifference struct {
	Actual   [][]string
	Expected [][]string
}

func (d GroupsDifference) String() string {
	return fmt.Sprintf("expected groups %s, but found groups %s", formatLevels(d.Expected), formatLevels(d.Actual))
}

// ColumnNameDifference reports differently named columns at one position.
type ColumnNameDifference struct {
	Index    int
	Actual   string
	Expected string
}

func (d ColumnNameDifference) String() string {
	return fmt.Sprintf("at index %d, expected column name %s, but found column name %s", d.Index, d.Expected, d.Actual)
}

// ColumnValueDifference reports the first difference inside one column.
type ColumnValueDifference struct {
	Name       string
	Difference ArrayDifference
}

func (d ColumnValueDifference) String() string {
	return fmt.Sprintf("in column %s: %s", d.Name, d.Difference)
}

func (HeightDifference) dataFrameDifference()      {}
func (WidthDifference) dataFrameDifference()       {}
func (GroupsDifference) dataFrameDifference()      {}
func (ColumnNameDifference) dataFrameDifference()  {}
func (ColumnValueDifference) dataFrameDifference() {}

func formatLevels(levels [][]string) string {
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = "[" + strings.Join(level, ", ") + "]"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DataFrames lists the differences between actual and expected. When the
// shapes or group levels differ, only those differences are reported.
// Otherwise columns are compared by position, and each column contributes
// at most its first value difference.
func DataFrames(actual, expected *dataframe.DataFrame, tol Tolerance) []DataFrameDifference {
	var differences []DataFrameDifference
	if actual.Height() != expected.Height() {
		differences = append(differences, HeightDifference{Actual: actual.Height(), Expected: expected.Height()})
	}
	if actual.Width() != expected.Width() {
		differences = append(differences, WidthDifference{Actual: actual.Width(), Expected: expected.Width()})
	}
	actualGroups, expectedGroups := actual.GroupLevels(), expected.GroupLevels()
	if !slices.EqualFunc(actualGroups, expectedGroups, func(a, b []string) bool { return slices.Equal(a, b) }) {
		differences = append(differences, GroupsDifference{Actual: actualGroups, Expected: expectedGroups})
	}
	if len(differences) > 0 {
		return differences
	}

	expectedColumns := expected.Columns()
	for i, column := range actual.Columns() {
		other := expectedColumns[i]
		if column.Name != other.Name {
			differences = append(differences, ColumnNameDifference{Index: i, Actual: column.Name, Expected: other.Name})
		}
		if found := Arrays(column.Values, other.Values, tol); len(found) > 0 {
			differences = append(differences, ColumnValueDifference{Name: column.Name, Difference: found[0]})
		}
	}
	return differences
}

// ArraysNotEqualError lists the differences found by AssertArraysEqual.
type ArraysNotEqualError struct {
	Differences []ArrayDifference
}

func (e *ArraysNotEqualError) Error() string {
	var sb strings.Builder
	sb.WriteString("arrays are not equal:")
	for _, d := range e.Differences {
		sb.WriteString("\n")
		sb.WriteString(d.String())
	}
	return sb.String()
}

// DataFramesNotEqualError lists the differences found by
// AssertDataFramesEqual.
type DataFramesNotEqualError struct {
	Differences []DataFrameDifference
}

func (e *DataFramesNotEqualError) Error() string {
	var sb strings.Builder
	sb.WriteString("data frames are not equal:")
	for _, d := range e.Differences {
		sb.WriteString("\n")
		sb.WriteString(d.String())
	}
	return sb.String()
}

// AssertArraysEqual returns an *ArraysNotEqualError when the arrays differ.
func AssertArraysEqual(actual, expected *array.Array, tol Tolerance) error {
	if differences := Arrays(actual, expected, tol); len(differences) > 0 {
		return &ArraysNotEqualError{Differences: differences}
	}
	return nil
}

// AssertDataFramesEqual returns a *DataFramesNotEqualError when the frames
// differ.
func AssertDataFramesEqual(actual, expected *dataframe.DataFrame, tol Tolerance) error {
	if differences := DataFrames(actual, expected, tol); len(differences) > 0 {
		return &DataFramesNotEqualError{Differences: differences}
	}
	return nil
}
