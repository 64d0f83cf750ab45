package dataframe

import (
	"slices"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// ConcatenateRows stacks frames vertically. Every frame must have the same
// columns in the same order and the same group levels. Column types promote.
func ConcatenateRows(first *DataFrame, others ...*DataFrame) (*DataFrame, error) {
	const op = "ConcatenateRows"
	height := first.height
	for _, other := range others {
		if !slices.Equal(other.names, first.names) {
			return nil, errors.Wrap(op, &errors.UnmatchedColumnsError{
				Expected: first.ColumnNames(),
				Actual:   other.ColumnNames(),
			})
		}
		if !slices.EqualFunc(other.groups, first.groups, func(a, b []string) bool { return slices.Equal(a, b) }) {
			return nil, errors.Wrap(op, &errors.UnmatchedGroupLevelsError{
				Expected: first.GroupLevels(),
				Actual:   other.GroupLevels(),
			})
		}
		height += other.height
	}

	columns := make(map[string]*array.Array, len(first.names))
	for _, name := range first.names {
		parts := make([]*array.Array, 0, len(others)+1)
		types := make([]datatype.DataType, 0, len(others)+1)
		parts = append(parts, first.columns[name])
		types = append(types, first.columns[name].DataType())
		for _, other := range others {
			parts = append(parts, other.columns[name])
			types = append(types, other.columns[name].DataType())
		}
		if _, ok := datatype.PromoteAll(types...); !ok {
			return nil, errors.WrapColumn(op, name, &errors.IncompatibleTypeError{Operation: "concatenate", Types: types})
		}
		stacked, err := array.Concat(parts...)
		if err != nil {
			return nil, errors.WrapColumn(op, name, err)
		}
		columns[name] = stacked
	}
	return first.derive(first.names, columns, height, first.groups), nil
}

// ConcatenateColumns places ungrouped frames of equal height side by side.
// Column names must be distinct across all frames.
func ConcatenateColumns(first *DataFrame, others ...*DataFrame) (*DataFrame, error) {
	const op = "ConcatenateColumns"
	frames := append([]*DataFrame{first}, others...)

	var names []string
	columns := make(map[string]*array.Array)
	for _, df := range frames {
		if len(df.groups) > 0 {
			return nil, errors.Wrap(op, &errors.HasGroupsError{Groups: df.GroupLevels()})
		}
		if df.height != first.height {
			return nil, errors.Wrap(op, &errors.UnmatchedHeightError{Expected: first.height, Actual: df.height})
		}
		for _, name := range df.names {
			if _, exists := columns[name]; exists {
				return nil, errors.WrapColumn(op, name, &errors.DuplicateColumnError{Column: name})
			}
			names = append(names, name)
			columns[name] = df.columns[name]
		}
	}
	return first.derive(names, columns, first.height, nil), nil
}
