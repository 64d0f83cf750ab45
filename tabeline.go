// Package tabeline is an in-memory table engine: typed nullable columns, a
// small formula language, and grouped relational operators over immutable
// data frames.
//
// This package is the public API. It re-exports the engine types so that
// callers need a single import:
//
//	df, _ := tabeline.New(
//		tabeline.MustColumn("dept", "eng", "eng", "ops"),
//		tabeline.MustColumn("salary", 100, 200, 50),
//	)
//	grouped, _ := df.GroupBy(tabeline.OriginalOrder, "dept")
//	totals, _ := grouped.Summarize(tabeline.MustAssign("total", "sum(salary)"))
//
// Every operator returns a new DataFrame and leaves its receiver unchanged.
package tabeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/config"
	"github.com/paveg/tabeline/internal/dataframe"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/diff"
	"github.com/paveg/tabeline/internal/expr"
	tabio "github.com/paveg/tabeline/internal/io"
)

// Core types.
type (
	DataFrame  = dataframe.DataFrame
	Column     = dataframe.Column
	Assignment = dataframe.Assignment
	RenamePair = dataframe.RenamePair
	JoinPair   = dataframe.JoinPair
	JoinType   = dataframe.JoinType
	GroupOrder = dataframe.GroupOrder
	Record     = dataframe.Record
	Array      = array.Array
	DataType   = datatype.DataType
	Expr       = expr.Expr
	Config     = config.Config
	Tolerance  = diff.Tolerance
)

// Element types.
const (
	Nothing   = datatype.Nothing
	Boolean   = datatype.Boolean
	Integer8  = datatype.Integer8
	Integer16 = datatype.Integer16
	Integer32 = datatype.Integer32
	Integer64 = datatype.Integer64
	Whole8    = datatype.Whole8
	Whole16   = datatype.Whole16
	Whole32   = datatype.Whole32
	Whole64   = datatype.Whole64
	Float32   = datatype.Float32
	Float64   = datatype.Float64
	String    = datatype.String
)

// Group orders and join types.
const (
	OriginalOrder = dataframe.OriginalOrder
	ClusterOrder  = dataframe.ClusterOrder
	SortOrder     = dataframe.SortOrder

	InnerJoin = dataframe.InnerJoin
	LeftJoin  = dataframe.LeftJoin
	OuterJoin = dataframe.OuterJoin
)

// NewArray infers the element type from values: the first non-nil value
// picks Boolean, Integer64, Float64, or String, and integers widen to
// Float64 when floats follow. All-nil input gives a Nothing array.
func NewArray(values ...any) (*Array, error) {
	return array.FromSequence(values)
}

// NewTypedArray builds an array of dt from values.
func NewTypedArray(dt DataType, values ...any) (*Array, error) {
	return array.FromTypedSequence(dt, values)
}

// NewColumn pairs a name with an inferred array.
func NewColumn(name string, values ...any) (Column, error) {
	a, err := array.FromSequence(values)
	if err != nil {
		return Column{}, err
	}
	return Column{Name: name, Values: a}, nil
}

// MustColumn is like NewColumn but panics on error.
func MustColumn(name string, values ...any) Column {
	c, err := NewColumn(name, values...)
	if err != nil {
		panic(err)
	}
	return c
}

// New creates a DataFrame whose height is the length of the first column.
func New(columns ...Column) (*DataFrame, error) {
	return dataframe.New(columns...)
}

// FromColumns creates a DataFrame of the given height.
func FromColumns(height int, columns ...Column) (*DataFrame, error) {
	return dataframe.FromColumns(height, columns...)
}

// FromRecords builds a DataFrame from rows, inferring each column's type.
func FromRecords(records ...Record) (*DataFrame, error) {
	return dataframe.FromRecords(records...)
}

// Parse parses a formula.
func Parse(source string) (Expr, error) {
	return expr.Parse(source)
}

// MustParse is like Parse but panics on error.
func MustParse(source string) Expr {
	return expr.MustParse(source)
}

// Assign parses source and pairs it with a target column name.
func Assign(name, source string) (Assignment, error) {
	e, err := expr.Parse(source)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Name: name, Expr: e}, nil
}

// MustAssign is like Assign but panics on error.
func MustAssign(name, source string) Assignment {
	return Assignment{Name: name, Expr: expr.MustParse(source)}
}

// On matches columns of the same name in a join.
func On(name string) JoinPair {
	return dataframe.On(name)
}

// ConcatenateRows stacks frames with matching columns and group levels.
func ConcatenateRows(first *DataFrame, others ...*DataFrame) (*DataFrame, error) {
	return dataframe.ConcatenateRows(first, others...)
}

// ConcatenateColumns places ungrouped frames of equal height side by side.
func ConcatenateColumns(first *DataFrame, others ...*DataFrame) (*DataFrame, error) {
	return dataframe.ConcatenateColumns(first, others...)
}

// ReadFile reads a CSV, TSV, Parquet, Arrow IPC, or JSON file chosen by
// extension. A nil logger discards output.
func ReadFile(path string, logger *slog.Logger) (*DataFrame, error) {
	return tabio.ReadFile(path, logger)
}

// ReadFiles reads several files concurrently and stacks them in order.
func ReadFiles(ctx context.Context, paths []string, logger *slog.Logger) (*DataFrame, error) {
	return tabio.ReadFiles(ctx, paths, 0, logger)
}

// WriteFile writes an ungrouped frame in the format chosen by extension.
func WriteFile(path string, df *DataFrame, logger *slog.Logger) error {
	return tabio.WriteFile(path, df, logger)
}

// ReadCSV reads headered CSV with options from the global configuration.
func ReadCSV(r io.Reader) (*DataFrame, error) {
	return tabio.ReadCSV(r, tabio.DefaultCSVOptions())
}

// WriteCSV writes an ungrouped frame as CSV.
func WriteCSV(w io.Writer, df *DataFrame) error {
	return tabio.WriteCSV(w, df, tabio.DefaultCSVOptions())
}

// AssertArraysEqual returns an error listing every difference between the
// arrays.
func AssertArraysEqual(actual, expected *Array, tol Tolerance) error {
	return diff.AssertArraysEqual(actual, expected, tol)
}

// AssertDataFramesEqual returns an error listing every difference between
// the frames.
func AssertDataFramesEqual(actual, expected *DataFrame, tol Tolerance) error {
	return diff.AssertDataFramesEqual(actual, expected, tol)
}

// SetConfig replaces the process-wide configuration.
func SetConfig(cfg Config) {
	config.SetGlobalConfig(cfg)
}

// GetConfig returns the process-wide configuration.
func GetConfig() Config {
	return config.GetGlobalConfig()
}
