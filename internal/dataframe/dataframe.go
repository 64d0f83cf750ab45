// Package dataframe provides DataFrame, an immutable table of named Arrays
// with a stack of group levels, and the operators that transform it.
package dataframe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/config"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/validation"
)

// Column is a named array used to build a DataFrame.
type Column struct {
	Name   string
	Values *array.Array
}

// DataFrame represents a table of data with typed columns. Every operator
// returns a new DataFrame and leaves its receiver unchanged.
type DataFrame struct {
	names   []string // Maintains column order
	columns map[string]*array.Array
	height  int
	groups  [][]string
}

// New creates a DataFrame whose height is the length of the first column.
// Without columns the frame has height zero.
func New(columns ...Column) (*DataFrame, error) {
	height := 0
	if len(columns) > 0 {
		height = columns[0].Values.Len()
	}
	return FromColumns(height, columns...)
}

// FromColumns creates a DataFrame of the given height. Every column must have
// exactly height elements and a distinct name.
func FromColumns(height int, columns ...Column) (*DataFrame, error) {
	if height < 0 {
		return nil, errors.NewInvalidInputError("FromColumns", fmt.Sprintf("height must be non-negative, got %d", height))
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	if err := validation.NewUniqueValidator("FromColumns", names...).Validate(); err != nil {
		return nil, err
	}

	data := make(map[string]*array.Array, len(columns))
	for _, c := range columns {
		if err := validation.ValidateLength(height, c.Values.Len(), "FromColumns", c.Name); err != nil {
			return nil, err
		}
		data[c.Name] = c.Values
	}
	return &DataFrame{names: names, columns: data, height: height}, nil
}

// Columnless creates a DataFrame with no columns and the given height.
func Columnless(height int) *DataFrame {
	return &DataFrame{columns: map[string]*array.Array{}, height: max(height, 0)}
}

// derive shares the receiver's columns under a new name order.
func (df *DataFrame) derive(names []string, columns map[string]*array.Array, height int, groups [][]string) *DataFrame {
	return &DataFrame{names: names, columns: columns, height: height, groups: groups}
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.names)
}

// Height returns the number of rows
func (df *DataFrame) Height() int {
	return df.height
}

// Shape returns (height, width).
func (df *DataFrame) Shape() (int, int) {
	return df.height, len(df.names)
}

// ColumnNames returns the names of all columns in order
func (df *DataFrame) ColumnNames() []string {
	return slices.Clone(df.names)
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.columns[name]
	return ok
}

// GroupLevels returns the group levels, outermost first.
func (df *DataFrame) GroupLevels() [][]string {
	return cloneLevels(df.groups)
}

// GroupNames returns the group columns of every level, flattened in order.
func (df *DataFrame) GroupNames() []string {
	var names []string
	for _, level := range df.groups {
		names = append(names, level...)
	}
	return names
}

// Column returns the array stored under name.
func (df *DataFrame) Column(name string) (*array.Array, error) {
	a, ok := df.columns[name]
	if !ok {
		return nil, &errors.NonexistentColumnError{Column: name}
	}
	return a, nil
}

// Columns returns the columns in order.
func (df *DataFrame) Columns() []Column {
	out := make([]Column, len(df.names))
	for i, name := range df.names {
		out[i] = Column{Name: name, Values: df.columns[name]}
	}
	return out
}

// Equal reports whether both frames have the same height, group levels, and
// columns in the same order with equal arrays.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.height != other.height || !slices.Equal(df.names, other.names) {
		return false
	}
	if !slices.EqualFunc(df.groups, other.groups, func(a, b []string) bool { return slices.Equal(a, b) }) {
		return false
	}
	for _, name := range df.names {
		if !df.columns[name].Equal(other.columns[name]) {
			return false
		}
	}
	return true
}

// String renders the frame as a table. At most DisplayMaxRows rows of the
// global configuration are shown.
func (df *DataFrame) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("DataFrame [%d x %d]\n", df.height, len(df.names)))
	if len(df.groups) > 0 {
		parts := make([]string, len(df.groups))
		for i, level := range df.groups {
			parts[i] = "[" + strings.Join(level, ", ") + "]"
		}
		sb.WriteString("Groups: " + strings.Join(parts, ", ") + "\n")
	}
	if len(df.names) == 0 {
		return sb.String()
	}

	table := tablewriter.NewWriter(&sb)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	header := make([]string, len(df.names))
	types := make([]string, len(df.names))
	for j, name := range df.names {
		header[j] = name
		types[j] = df.columns[name].DataType().String()
	}
	table.SetHeader(header)
	table.Append(types)

	cfg := config.GetGlobalConfig()
	shown := df.height
	if limit := cfg.DisplayMaxRows; limit > 0 && shown > limit {
		shown = limit
	}
	for i := range shown {
		row := make([]string, len(df.names))
		for j, name := range df.names {
			if a := df.columns[name]; a.IsNull(i) {
				row[j] = "null"
			} else {
				row[j] = truncate(a.FormatElement(i), cfg.DisplayMaxWidth)
			}
		}
		table.Append(row)
	}
	if shown < df.height {
		ellipsis := make([]string, len(df.names))
		for j := range ellipsis {
			ellipsis[j] = "..."
		}
		table.Append(ellipsis)
	}
	table.Render()
	return sb.String()
}

// truncate shortens text to width runes, ending it with "...". A width of
// zero means unlimited.
func truncate(text string, width int) string {
	runes := []rune(text)
	if width <= 0 || len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func cloneLevels(levels [][]string) [][]string {
	if levels == nil {
		return nil
	}
	out := make([][]string, len(levels))
	for i, level := range levels {
		out[i] = slices.Clone(level)
	}
	return out
}

// take gathers rows by position into a frame with the same columns and groups.
func (df *DataFrame) take(rows []int) *DataFrame {
	columns := make(map[string]*array.Array, len(df.columns))
	for name, a := range df.columns {
		columns[name] = a.Take(rows)
	}
	return df.derive(df.names, columns, len(rows), df.groups)
}

// arrays looks up the named columns, which must exist.
func (df *DataFrame) arrays(names []string) []*array.Array {
	out := make([]*array.Array, len(names))
	for i, name := range names {
		out[i] = df.columns[name]
	}
	return out
}
