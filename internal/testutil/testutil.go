// Package testutil provides common testing utilities to reduce code duplication
// across test files in tabeline.
//
// It covers:
// - Building arrays and data frames from Go literals
// - Standard employee test data
// - Frame and array assertions that list every difference
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/diff"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// ColumnSpec describes a test column. A nil Type infers the type from Values.
type ColumnSpec struct {
	Name   string
	Type   *datatype.DataType
	Values []any
}

// Col describes a column whose type is inferred from values.
func Col(name string, values ...any) ColumnSpec {
	return ColumnSpec{Name: name, Values: values}
}

// TypedCol describes a column of type dt.
func TypedCol(name string, dt datatype.DataType, values ...any) ColumnSpec {
	return ColumnSpec{Name: name, Type: &dt, Values: values}
}

// NewArray builds an array, inferring its type.
func NewArray(tb testing.TB, values ...any) *array.Array {
	tb.Helper()
	a, err := array.FromSequence(values)
	require.NoError(tb, err)
	return a
}

// NewTypedArray builds an array of type dt.
func NewTypedArray(tb testing.TB, dt datatype.DataType, values ...any) *array.Array {
	tb.Helper()
	a, err := array.FromTypedSequence(dt, values)
	require.NoError(tb, err)
	return a
}

// NewFrame builds a data frame from column specs.
//
// Example usage:
//
//	df := testutil.NewFrame(t,
//		testutil.Col("name", "Alice", "Bob"),
//		testutil.TypedCol("age", datatype.Integer32, 25, 30),
//	)
func NewFrame(tb testing.TB, specs ...ColumnSpec) *dataframe.DataFrame {
	tb.Helper()
	columns := make([]dataframe.Column, len(specs))
	for i, spec := range specs {
		var values *array.Array
		if spec.Type == nil {
			values = NewArray(tb, spec.Values...)
		} else {
			values = NewTypedArray(tb, *spec.Type, spec.Values...)
		}
		columns[i] = dataframe.Column{Name: spec.Name, Values: values}
	}
	df, err := dataframe.New(columns...)
	require.NoError(tb, err)
	return df
}

// GroupedFrame groups df by each level in turn, keeping row order.
func GroupedFrame(tb testing.TB, df *dataframe.DataFrame, levels ...[]string) *dataframe.DataFrame {
	tb.Helper()
	for _, level := range levels {
		var err error
		df, err = df.GroupBy(dataframe.OriginalOrder, level...)
		require.NoError(tb, err)
	}
	return df
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
}

// WithNulls makes every third salary null.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (String): ["Alice", "Bob", "Charlie", "David"]
// - age (Integer64): [25, 30, 35, 28]
// - department (String): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (Float64): [100000, 80000, 120000, 75000]
func CreateTestDataFrame(tb testing.TB, opts ...TestDataFrameOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &testDataFrameConfig{
		includeNulls: false,
		rowCount:     defaultRowCount,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	salaries := generateSalaries(cfg.rowCount)
	if cfg.includeNulls {
		for i := 2; i < len(salaries); i += 3 {
			salaries[i] = nil
		}
	}

	return NewFrame(tb,
		Col("name", generateNames(cfg.rowCount)...),
		TypedCol("age", datatype.Integer64, generateAges(cfg.rowCount)...),
		Col("department", generateDepartments(cfg.rowCount)...),
		TypedCol("salary", datatype.Float64, salaries...),
	)
}

// RequireFramesEqual fails the test with every difference between the frames.
func RequireFramesEqual(tb testing.TB, actual, expected *dataframe.DataFrame) {
	tb.Helper()
	require.NotNil(tb, actual, "actual DataFrame should not be nil")
	require.NotNil(tb, expected, "expected DataFrame should not be nil")
	require.NoError(tb, diff.AssertDataFramesEqual(actual, expected, diff.Tolerance{}),
		"actual:\n%s\nexpected:\n%s", actual, expected)
}

// RequireArraysEqual fails the test with every difference between the arrays.
func RequireArraysEqual(tb testing.TB, actual, expected *array.Array) {
	tb.Helper()
	require.NotNil(tb, actual, "actual array should not be nil")
	require.NoError(tb, diff.AssertArraysEqual(actual, expected, diff.Tolerance{}))
}

// TempFile returns a path named name inside a directory removed after the test.
func TempFile(tb testing.TB, name string) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), name)
}

// Helper functions for generating test data

func generateNames(count int) []any {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]any, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []any {
	baseAges := []int64{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]any, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []any {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]any, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []any {
	baseSalaries := []float64{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]any, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}
