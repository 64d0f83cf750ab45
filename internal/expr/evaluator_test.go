package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/expr"
)

type columns map[string]*array.Array

func (c columns) Column(name string) (*array.Array, error) {
	a, ok := c[name]
	if !ok {
		return nil, &errors.NonexistentColumnError{Column: name}
	}
	return a, nil
}

func typed(t *testing.T, dt datatype.DataType, values ...any) *array.Array {
	t.Helper()
	a, err := array.FromTypedSequence(dt, values)
	require.NoError(t, err)
	return a
}

func fixture(t *testing.T) columns {
	return columns{
		"g": typed(t, datatype.String, "a", "b", "a", "b"),
		"x": typed(t, datatype.Integer64, int64(1), int64(2), int64(3), int64(4)),
		"f": typed(t, datatype.Float64, 0.5, nil, 1.5, 2.5),
	}
}

func TestWindowUngrouped(t *testing.T) {
	src := fixture(t)
	all := [][]int{{0, 1, 2, 3}}

	tests := []struct {
		source   string
		expected *array.Array
	}{
		{"x + 1", typed(t, datatype.Integer64, int64(2), int64(3), int64(4), int64(5))},
		{"x == max(x)", typed(t, datatype.Boolean, false, false, false, true)},
		{"x - mean(x)", typed(t, datatype.Float64, -1.5, -0.5, 0.5, 1.5)},
		{"n()", typed(t, datatype.Integer64, int64(4), int64(4), int64(4), int64(4))},
		{"row_index0()", typed(t, datatype.Integer64, int64(0), int64(1), int64(2), int64(3))},
		{"f * 2", typed(t, datatype.Float64, 1.0, nil, 3.0, 5.0)},
		{"None", array.Nulls(datatype.Nothing, 4)},
		{"'k'", typed(t, datatype.String, "k", "k", "k", "k")},
		{"if_else(x > 2, g, 'none')", typed(t, datatype.String, "none", "none", "a", "b")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			actual, err := expr.Window(expr.MustParse(tt.source), src, 4, all)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(actual), "expected %s, got %s", tt.expected, actual)
		})
	}
}

func TestWindowGrouped(t *testing.T) {
	src := fixture(t)
	groups := [][]int{{0, 2}, {1, 3}}

	actual, err := expr.Window(expr.MustParse("sum(x)"), src, 4, groups)
	require.NoError(t, err)
	assert.True(t, typed(t, datatype.Integer64, int64(4), int64(6), int64(4), int64(6)).Equal(actual), "%s", actual)

	index, err := expr.Window(expr.MustParse("row_index1()"), src, 4, groups)
	require.NoError(t, err)
	assert.True(t, typed(t, datatype.Integer64, int64(1), int64(1), int64(2), int64(2)).Equal(index), "%s", index)
}

func TestWindowErrors(t *testing.T) {
	src := fixture(t)
	all := [][]int{{0, 1, 2, 3}}

	_, err := expr.Window(expr.MustParse("y + 1"), src, 4, all)
	var missing *errors.NonexistentColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "y", missing.Column)

	_, err = expr.Window(expr.MustParse("g - 1"), src, 4, all)
	var incompatible *errors.IncompatibleTypeError
	require.ErrorAs(t, err, &incompatible)

	_, err = expr.Window(expr.MustParse("frobnicate(x)"), src, 4, all)
	var unknown *errors.UnknownFunctionError
	require.ErrorAs(t, err, &unknown)

	_, err = expr.Window(expr.MustParse("same(g)"), src, 4, all)
	var notSame *errors.NotSameError
	require.ErrorAs(t, err, &notSame)
	assert.Equal(t, []any{"a", "b"}, notSame.Values)
}

func TestAggregate(t *testing.T) {
	src := fixture(t)
	groups := [][]int{{0, 2}, {1, 3}}

	actual, err := expr.Aggregate(expr.MustParse("max(x) - min(x)"), src, groups)
	require.NoError(t, err)
	assert.True(t, typed(t, datatype.Integer64, int64(2), int64(2)).Equal(actual), "%s", actual)

	keys, err := expr.Aggregate(expr.MustParse("same(g)"), src, groups)
	require.NoError(t, err)
	assert.True(t, typed(t, datatype.String, "a", "b").Equal(keys), "%s", keys)

	_, err = expr.Aggregate(expr.MustParse("x"), src, groups)
	var length *errors.IncompatibleLengthError
	require.ErrorAs(t, err, &length)
	assert.Equal(t, 1, length.Expected)
}

func TestAggregateInterp(t *testing.T) {
	src := columns{
		"ts": typed(t, datatype.Float64, 2.0, 3.0, 5.0),
		"ys": typed(t, datatype.Float64, 0.3, 0.1, 0.8),
	}
	actual, err := expr.Aggregate(expr.MustParse("interp(2.5, ts, ys)"), src, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	require.Equal(t, 1, actual.Len())
	assert.InDelta(t, 0.2, actual.Float(0), 1e-12)
}

func TestEmptyGroups(t *testing.T) {
	src := fixture(t)

	empty, err := expr.Aggregate(expr.MustParse("mean(x)"), src, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, datatype.Float64, empty.DataType())

	failing, err := expr.Aggregate(expr.MustParse("quantile(x, f)"), src, nil)
	require.NoError(t, err)
	assert.Equal(t, datatype.Nothing, failing.DataType())

	window, err := expr.Window(expr.MustParse("x * 2"), src, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, datatype.Integer64, window.DataType())
}
