package dataframe

import (
	"slices"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/validation"
)

// Spread turns the distinct values of key into columns holding value. The
// result has one row per group, keeps the group columns, and drops the
// innermost group level. Missing combinations are null, and when a group
// holds a key twice the first value wins.
func (df *DataFrame) Spread(key, value string) (*DataFrame, error) {
	if err := validation.ValidateUngroupedColumns(df, "Spread", key, value); err != nil {
		return nil, err
	}
	levels, err := df.popLevel("Spread")
	if err != nil {
		return nil, err
	}

	keys := df.columns[key]
	keyTable := indexRows([]*array.Array{keys}, df.height)
	keyGroups := keyTable.groups()
	keyIndex := make([]int, df.height)
	for k, rows := range keyGroups {
		for _, row := range rows {
			keyIndex[row] = k
		}
	}

	groups := df.groupRows()
	cells := make([][]int, len(keyGroups))
	for k := range cells {
		cells[k] = make([]int, len(groups))
		for g := range cells[k] {
			cells[k][g] = -1
		}
	}
	first := make([]int, len(groups))
	for g, rows := range groups {
		first[g] = rows[0]
		for _, row := range rows {
			if k := keyIndex[row]; cells[k][g] < 0 {
				cells[k][g] = row
			}
		}
	}

	groupNames := df.GroupNames()
	names := slices.Clone(groupNames)
	columns := make(map[string]*array.Array, len(groupNames)+len(keyGroups))
	for _, name := range groupNames {
		columns[name] = df.columns[name].Take(first)
	}
	values := df.columns[value]
	for k, rows := range keyGroups {
		name := "null"
		if !keys.IsNull(rows[0]) {
			name = keys.FormatElement(rows[0])
		}
		if _, exists := columns[name]; exists {
			return nil, errors.WrapColumn("Spread", name, &errors.DuplicateColumnError{Column: name})
		}
		names = append(names, name)
		columns[name] = values.Take(cells[k])
	}
	return df.derive(names, columns, len(groups), levels), nil
}

// Gather stacks columns into two new columns: key holds the name of the
// source column and value holds its element. The remaining columns repeat
// for every gathered column, and key becomes a new group level.
func (df *DataFrame) Gather(key, value string, columns ...string) (*DataFrame, error) {
	if err := validation.NewCompoundValidator(
		validation.NewUniqueValidator("Gather", columns...),
		validation.NewColumnValidator(df, "Gather", columns...),
		validation.NewUngroupedValidator(df, "Gather", columns...),
		validation.NewUniqueValidator("Gather", key, value),
		validation.NewAbsentValidator(df, "Gather", key, value),
	).Validate(); err != nil {
		return nil, err
	}

	gathered := df.arrays(columns)
	types := make([]datatype.DataType, len(gathered))
	for i, a := range gathered {
		types[i] = a.DataType()
	}
	if _, ok := datatype.PromoteAll(types...); !ok {
		return nil, errors.WrapColumn("Gather", value, &errors.IncompatibleTypeError{Operation: "gather", Types: types})
	}

	height := df.height * len(columns)
	rows := make([]int, 0, height)
	for range columns {
		for i := range df.height {
			rows = append(rows, i)
		}
	}

	var names []string
	out := make(map[string]*array.Array, len(df.names)-len(columns)+2)
	for _, name := range df.names {
		if !slices.Contains(columns, name) {
			names = append(names, name)
			out[name] = df.columns[name].Take(rows)
		}
	}

	keyBuilder := array.NewBuilder(datatype.String, height)
	for _, name := range columns {
		for range df.height {
			keyBuilder.AppendString(name)
		}
	}
	stacked, err := array.Concat(gathered...)
	if err != nil {
		return nil, errors.WrapColumn("Gather", value, err)
	}
	names = append(names, key, value)
	out[key] = keyBuilder.Finish()
	out[value] = stacked

	groups := cloneLevels(df.groups)
	groups = append(groups, []string{key})
	return df.derive(names, out, height, groups), nil
}
