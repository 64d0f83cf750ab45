package dataframe

import (
	"maps"
	"slices"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/expr"
	"github.com/paveg/tabeline/internal/validation"
)

// RenamePair renames the column Old to New.
type RenamePair struct {
	New string
	Old string
}

// Assignment stores the value of Expr in the column Name.
type Assignment struct {
	Name string
	Expr expr.Expr
}

// Select keeps the listed columns in the given order. Group columns that are
// not listed are kept in front of them.
func (df *DataFrame) Select(columns ...string) (*DataFrame, error) {
	if err := validation.ValidateColumns(df, "Select", columns...); err != nil {
		return nil, err
	}

	groups := df.GroupNames()
	var names []string
	for _, name := range df.names {
		if slices.Contains(groups, name) && !slices.Contains(columns, name) {
			names = append(names, name)
		}
	}
	names = append(names, columns...)
	return df.project(names), nil
}

// project keeps exactly the named columns in the given order.
func (df *DataFrame) project(names []string) *DataFrame {
	columns := make(map[string]*array.Array, len(names))
	for _, name := range names {
		columns[name] = df.columns[name]
	}
	return df.derive(names, columns, df.height, df.groups)
}

// Deselect drops the listed columns. Group columns cannot be dropped.
func (df *DataFrame) Deselect(columns ...string) (*DataFrame, error) {
	if err := validation.ValidateUngroupedColumns(df, "Deselect", columns...); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(df.names))
	for _, name := range df.names {
		if !slices.Contains(columns, name) {
			names = append(names, name)
		}
	}
	return df.project(names), nil
}

// Rename renames columns in place, group levels included. All pairs apply at
// once, so two columns may swap names.
func (df *DataFrame) Rename(pairs ...RenamePair) (*DataFrame, error) {
	olds := make([]string, len(pairs))
	news := make([]string, len(pairs))
	for i, p := range pairs {
		olds[i], news[i] = p.Old, p.New
	}
	if err := validation.ValidateColumns(df, "Rename", olds...); err != nil {
		return nil, err
	}
	if err := validation.NewUniqueValidator("Rename", news...).Validate(); err != nil {
		return nil, err
	}
	for _, p := range pairs {
		if df.HasColumn(p.New) && !slices.Contains(olds, p.New) {
			return nil, errors.WrapColumn("Rename", p.New, &errors.RenameExistingError{Old: p.Old, New: p.New})
		}
	}

	mapping := make(map[string]string, len(pairs))
	for _, p := range pairs {
		mapping[p.Old] = p.New
	}
	renamed := func(name string) string {
		if n, ok := mapping[name]; ok {
			return n
		}
		return name
	}

	names := make([]string, len(df.names))
	columns := make(map[string]*array.Array, len(df.columns))
	for i, name := range df.names {
		names[i] = renamed(name)
		columns[names[i]] = df.columns[name]
	}
	groups := cloneLevels(df.groups)
	for _, level := range groups {
		for i, name := range level {
			level[i] = renamed(name)
		}
	}
	return df.derive(names, columns, df.height, groups), nil
}

// Mutate evaluates each assignment in order within every group. A later
// assignment sees the columns written by earlier ones. An existing column is
// replaced in place and a new column is appended.
func (df *DataFrame) Mutate(assignments ...Assignment) (*DataFrame, error) {
	return df.mutate("Mutate", assignments)
}

func (df *DataFrame) mutate(op string, assignments []Assignment) (*DataFrame, error) {
	targets := make([]string, len(assignments))
	for i, a := range assignments {
		targets[i] = a.Name
	}
	if err := validation.NewUngroupedValidator(df, op, targets...).Validate(); err != nil {
		return nil, err
	}

	groups := df.groupRows()
	current := df.derive(slices.Clone(df.names), maps.Clone(df.columns), df.height, df.groups)
	for _, a := range assignments {
		values, err := expr.Window(a.Expr, current, df.height, groups)
		if err != nil {
			return nil, errors.WrapColumn(op, a.Name, err)
		}
		if !current.HasColumn(a.Name) {
			current.names = append(current.names, a.Name)
		}
		current.columns[a.Name] = values
	}
	return current, nil
}

// Transmute is Mutate followed by keeping only the group columns and the
// assigned columns.
func (df *DataFrame) Transmute(assignments ...Assignment) (*DataFrame, error) {
	mutated, err := df.mutate("Transmute", assignments)
	if err != nil {
		return nil, err
	}

	names := df.GroupNames()
	for _, a := range assignments {
		if !slices.Contains(names, a.Name) {
			names = append(names, a.Name)
		}
	}
	return mutated.project(names), nil
}
