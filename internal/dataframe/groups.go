package dataframe

import (
	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/expr"
	"github.com/paveg/tabeline/internal/validation"
)

// GroupOrder selects how GroupBy arranges rows before adding the level.
type GroupOrder int

const (
	// OriginalOrder leaves rows where they are.
	OriginalOrder GroupOrder = iota
	// ClusterOrder clusters rows by the new group columns.
	ClusterOrder
	// SortOrder sorts rows by the new group columns.
	SortOrder
)

func (o GroupOrder) String() string {
	switch o {
	case ClusterOrder:
		return "cluster"
	case SortOrder:
		return "sort"
	default:
		return "original"
	}
}

// GroupBy pushes a new group level made of columns. An empty level is
// allowed and groups nothing further.
func (df *DataFrame) GroupBy(order GroupOrder, columns ...string) (*DataFrame, error) {
	if err := validation.ValidateUngroupedColumns(df, "GroupBy", columns...); err != nil {
		return nil, err
	}

	arranged := df
	switch order {
	case ClusterOrder:
		arranged = df.cluster(columns)
	case SortOrder:
		arranged = df.sort(columns)
	}

	groups := cloneLevels(df.groups)
	groups = append(groups, append([]string{}, columns...))
	return arranged.derive(arranged.names, arranged.columns, arranged.height, groups), nil
}

// Ungroup pops the innermost group level.
func (df *DataFrame) Ungroup() (*DataFrame, error) {
	groups, err := df.popLevel("Ungroup")
	if err != nil {
		return nil, err
	}
	return df.derive(df.names, df.columns, df.height, groups), nil
}

// UngroupAll drops every group level.
func (df *DataFrame) UngroupAll() *DataFrame {
	return df.derive(df.names, df.columns, df.height, nil)
}

func (df *DataFrame) popLevel(op string) ([][]string, error) {
	if len(df.groups) == 0 {
		return nil, errors.Wrap(op, &errors.NoGroupsError{})
	}
	groups := cloneLevels(df.groups[:len(df.groups)-1])
	if len(groups) == 0 {
		groups = nil
	}
	return groups, nil
}

// Summarize reduces every group to one row. The result holds the group
// columns followed by one column per assignment, and the innermost group
// level is dropped. An assignment may refer to the names of earlier
// assignments; those references stand for the earlier expressions.
func (df *DataFrame) Summarize(assignments ...Assignment) (*DataFrame, error) {
	targets := make([]string, len(assignments))
	for i, a := range assignments {
		targets[i] = a.Name
	}
	if err := validation.NewCompoundValidator(
		validation.NewUniqueValidator("Summarize", targets...),
		validation.NewUngroupedValidator(df, "Summarize", targets...),
	).Validate(); err != nil {
		return nil, err
	}
	levels, err := df.popLevel("Summarize")
	if err != nil {
		return nil, err
	}

	groupNames := df.GroupNames()
	groups := df.groupRows()
	first := make([]int, len(groups))
	for i, rows := range groups {
		first[i] = rows[0]
	}

	names := make([]string, 0, len(groupNames)+len(assignments))
	columns := make(map[string]*array.Array, len(groupNames)+len(assignments))
	for _, name := range groupNames {
		names = append(names, name)
		columns[name] = df.columns[name].Take(first)
	}

	substitutions := make(map[string]expr.Expr, len(assignments))
	for _, a := range assignments {
		reducer := expr.Substitute(a.Expr, substitutions)
		values, err := expr.Aggregate(reducer, df, groups)
		if err != nil {
			return nil, errors.WrapColumn("Summarize", a.Name, err)
		}
		names = append(names, a.Name)
		columns[a.Name] = values
		substitutions[a.Name] = reducer
	}
	return df.derive(names, columns, len(groups), levels), nil
}
