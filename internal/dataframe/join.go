package dataframe

import (
	"slices"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/validation"
)

// JoinType represents different types of joins
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	OuterJoin
)

func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "LeftJoin"
	case OuterJoin:
		return "OuterJoin"
	default:
		return "InnerJoin"
	}
}

// JoinPair matches the column Left of the left frame with the column Right
// of the right frame.
type JoinPair struct {
	Left  string
	Right string
}

// On is shorthand for a JoinPair whose columns share a name.
func On(name string) JoinPair {
	return JoinPair{Left: name, Right: name}
}

// InnerJoin keeps the pairs of rows whose keys match.
func (df *DataFrame) InnerJoin(right *DataFrame, by ...JoinPair) (*DataFrame, error) {
	return df.Join(right, InnerJoin, by...)
}

// LeftJoin keeps every left row, matched or not.
func (df *DataFrame) LeftJoin(right *DataFrame, by ...JoinPair) (*DataFrame, error) {
	return df.Join(right, LeftJoin, by...)
}

// OuterJoin keeps every row of both frames.
func (df *DataFrame) OuterJoin(right *DataFrame, by ...JoinPair) (*DataFrame, error) {
	return df.Join(right, OuterJoin, by...)
}

// Join combines df and right on equal keys. Without pairs the key is every
// column name the frames share. Keys compare after promotion to a common type
// and null matches null. The result holds the left columns, with keys taken
// from the right for rows only the right frame has, then the non-key right
// columns. Rows are ordered by left position, then right position, and
// right-only rows come first.
func (df *DataFrame) Join(right *DataFrame, how JoinType, by ...JoinPair) (*DataFrame, error) {
	op := how.String()
	if len(by) == 0 {
		for _, name := range df.names {
			if right.HasColumn(name) {
				by = append(by, On(name))
			}
		}
	}

	leftNames := make([]string, len(by))
	rightNames := make([]string, len(by))
	for i, p := range by {
		leftNames[i], rightNames[i] = p.Left, p.Right
	}
	if err := validateJoinSide(df, op, leftNames); err != nil {
		return nil, err
	}
	if err := validateJoinSide(right, op, rightNames); err != nil {
		return nil, err
	}

	var rightRest []string
	for _, name := range right.names {
		if slices.Contains(rightNames, name) {
			continue
		}
		if df.HasColumn(name) {
			return nil, errors.WrapColumn(op, name, &errors.DuplicateColumnError{Column: name})
		}
		rightRest = append(rightRest, name)
	}

	leftKeys := make([]*array.Array, len(by))
	rightKeys := make([]*array.Array, len(by))
	for i, p := range by {
		l, r := df.columns[p.Left], right.columns[p.Right]
		dt, ok := datatype.Promote(l.DataType(), r.DataType())
		if !ok {
			return nil, errors.WrapColumn(op, p.Left, &errors.IncompatibleTypeError{
				Operation: "join",
				Types:     []datatype.DataType{l.DataType(), r.DataType()},
			})
		}
		var err error
		if leftKeys[i], err = l.Cast(dt); err != nil {
			return nil, errors.WrapColumn(op, p.Left, err)
		}
		if rightKeys[i], err = r.Cast(dt); err != nil {
			return nil, errors.WrapColumn(op, p.Right, err)
		}
	}

	leftRows, rightRows := matchRows(leftKeys, df.height, rightKeys, right.height, how)

	names := make([]string, 0, len(df.names)+len(rightRest))
	columns := make(map[string]*array.Array, len(df.names)+len(rightRest))
	for _, name := range df.names {
		names = append(names, name)
		if k := slices.Index(leftNames, name); k >= 0 {
			columns[name] = coalesce(leftKeys[k], leftRows, rightKeys[k], rightRows)
			continue
		}
		columns[name] = df.columns[name].Take(leftRows)
	}
	for _, name := range rightRest {
		names = append(names, name)
		columns[name] = right.columns[name].Take(rightRows)
	}
	return df.derive(names, columns, len(leftRows), nil), nil
}

func validateJoinSide(df *DataFrame, op string, names []string) error {
	if len(df.groups) > 0 {
		return errors.Wrap(op, &errors.HasGroupsError{Groups: df.GroupLevels()})
	}
	return validation.ValidateColumns(df, op, names...)
}

// matchRows pairs left and right row positions. A position of -1 marks the
// missing side of an unmatched row.
func matchRows(leftKeys []*array.Array, leftHeight int, rightKeys []*array.Array, rightHeight int, how JoinType) ([]int, []int) {
	index := indexRows(rightKeys, rightHeight)
	matched := make([]bool, rightHeight)

	var leftRows, rightRows []int
	var buf []byte
	for i := range leftHeight {
		buf = rowKey(buf[:0], leftKeys, i)
		rows, ok := index.get(buf)
		if !ok {
			if how != InnerJoin {
				leftRows = append(leftRows, i)
				rightRows = append(rightRows, -1)
			}
			continue
		}
		for _, j := range rows {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
			matched[j] = true
		}
	}

	if how == OuterJoin {
		var onlyRight []int
		for j, ok := range matched {
			if !ok {
				onlyRight = append(onlyRight, j)
			}
		}
		leftRows = append(slices.Repeat([]int{-1}, len(onlyRight)), leftRows...)
		rightRows = append(onlyRight, rightRows...)
	}
	return leftRows, rightRows
}

// coalesce takes each element from left, or from right where the left
// position is missing. Both arrays share a type.
func coalesce(left *array.Array, leftRows []int, right *array.Array, rightRows []int) *array.Array {
	b := array.NewBuilder(left.DataType(), len(leftRows))
	for k, i := range leftRows {
		switch {
		case i >= 0:
			b.AppendFrom(left, i)
		case rightRows[k] >= 0:
			b.AppendFrom(right, rightRows[k])
		default:
			b.AppendNull()
		}
	}
	return b.Finish()
}
