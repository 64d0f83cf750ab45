package dataframe

import (
	"slices"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/expr"
	"github.com/paveg/tabeline/internal/validation"
)

// Filter keeps the rows where predicate is true. The predicate is evaluated
// per group, so aggregates inside it see only the rows of their group.
func (df *DataFrame) Filter(predicate expr.Expr) (*DataFrame, error) {
	mask, err := expr.Window(predicate, df, df.height, df.groupRows())
	if err != nil {
		return nil, errors.Wrap("Filter", err)
	}
	if dt := mask.DataType(); dt != datatype.Boolean && dt != datatype.Nothing {
		return nil, errors.Wrap("Filter", &errors.IncompatibleTypeError{
			Operation: "filter",
			Types:     []datatype.DataType{dt},
		})
	}

	var rows []int
	if mask.DataType() == datatype.Boolean {
		for i := range mask.Len() {
			if !mask.IsNull(i) && mask.Bool(i) {
				rows = append(rows, i)
			}
		}
	}
	return df.take(rows), nil
}

// Distinct keeps the first row of every distinct combination of columns.
// Group columns not listed in columns are part of the key, so rows are
// deduplicated within each group.
func (df *DataFrame) Distinct(columns ...string) (*DataFrame, error) {
	if err := validation.ValidateColumns(df, "Distinct", columns...); err != nil {
		return nil, err
	}

	var keyNames []string
	for _, name := range df.GroupNames() {
		if !slices.Contains(columns, name) {
			keyNames = append(keyNames, name)
		}
	}
	keyNames = append(keyNames, columns...)

	parts := partition(df.arrays(keyNames), df.height)
	rows := make([]int, len(parts))
	for i, part := range parts {
		rows[i] = part[0]
	}
	return df.take(rows), nil
}

// Unique removes rows that duplicate an earlier row in every column.
func (df *DataFrame) Unique() *DataFrame {
	parts := partition(df.arrays(df.names), df.height)
	rows := make([]int, len(parts))
	for i, part := range parts {
		rows[i] = part[0]
	}
	return df.take(rows)
}

// Cluster brings rows with equal values in columns together. Within each
// group, clusters are ordered by their first row and rows keep their
// relative order.
func (df *DataFrame) Cluster(columns ...string) (*DataFrame, error) {
	if err := validation.ValidateUngroupedColumns(df, "Cluster", columns...); err != nil {
		return nil, err
	}
	return df.cluster(columns), nil
}

func (df *DataFrame) cluster(columns []string) *DataFrame {
	keys := df.arrays(columns)
	return df.reorderGroups(func(rows []int) []int {
		kt := newKeyTable(len(rows))
		var buf []byte
		for _, row := range rows {
			buf = rowKey(buf[:0], keys, row)
			kt.put(buf, row)
		}
		return slices.Concat(kt.groups()...)
	})
}

// Sort orders rows ascending by columns within each group. Nulls sort first
// and NaN sorts after every number. The sort is stable.
func (df *DataFrame) Sort(columns ...string) (*DataFrame, error) {
	if err := validation.ValidateUngroupedColumns(df, "Sort", columns...); err != nil {
		return nil, err
	}
	return df.sort(columns), nil
}

func (df *DataFrame) sort(columns []string) *DataFrame {
	keys := df.arrays(columns)
	return df.reorderGroups(func(rows []int) []int {
		sorted := slices.Clone(rows)
		slices.SortStableFunc(sorted, func(i, j int) int {
			for _, a := range keys {
				if c := array.Compare(a, i, a, j); c != 0 {
					return c
				}
			}
			return 0
		})
		return sorted
	})
}

// reorderGroups permutes the rows of each group among the positions the
// group already occupies.
func (df *DataFrame) reorderGroups(permute func(rows []int) []int) *DataFrame {
	order := make([]int, df.height)
	for _, rows := range df.groupRows() {
		for k, row := range permute(rows) {
			order[rows[k]] = row
		}
	}
	return df.take(order)
}

// Slice0 keeps the rows at the given zero-based indexes of every group.
func (df *DataFrame) Slice0(indexes ...int) (*DataFrame, error) {
	return df.slice("Slice0", indexes, false)
}

// Slice1 keeps the rows at the given one-based indexes of every group.
func (df *DataFrame) Slice1(indexes ...int) (*DataFrame, error) {
	return df.slice("Slice1", indexes, true)
}

func (df *DataFrame) slice(op string, indexes []int, oneIndexed bool) (*DataFrame, error) {
	if err := validation.ValidateIndexes(op, df.height, oneIndexed, indexes...); err != nil {
		return nil, err
	}
	offset := 0
	if oneIndexed {
		offset = 1
	}

	var rows []int
	for _, group := range df.groupRows() {
		for _, index := range indexes {
			i := index - offset
			if i >= len(group) {
				return nil, errors.Wrap(op, &errors.GroupIndexOutOfBoundsError{
					Index:      index,
					Length:     len(group),
					OneIndexed: oneIndexed,
				})
			}
			rows = append(rows, group[i])
		}
	}
	slices.Sort(rows)
	return df.take(rows), nil
}
