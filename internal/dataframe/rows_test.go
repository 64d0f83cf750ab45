package dataframe_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/expr"
	"github.com/paveg/tabeline/internal/testutil"
)

func mustParse(source string) expr.Expr {
	return expr.MustParse(source)
}

func TestFilter(t *testing.T) {
	t.Run("keeps rows equal to the maximum", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 0, 0, 1, 1), testutil.Col("y", 1, 2, 3, 4))
		actual, err := df.Filter(mustParse("x == max(x)"))
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t, testutil.Col("x", 1, 1), testutil.Col("y", 3, 4)))
	})

	t.Run("aggregates per group", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "a", "b", "b"), testutil.Col("y", 1, 2, 4, 3)),
			[]string{"g"},
		)
		actual, err := df.Filter(mustParse("y == max(y)"))
		require.NoError(t, err)
		expected := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "b"), testutil.Col("y", 2, 4)),
			[]string{"g"},
		)
		testutil.RequireFramesEqual(t, actual, expected)
	})

	t.Run("null predicate drops the row", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("f", 1.0, nil, 3.0))
		actual, err := df.Filter(mustParse("f > 1"))
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t, testutil.Col("f", 3.0)))
	})

	t.Run("non-boolean predicate", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 1, 2))
		_, err := df.Filter(mustParse("x + 1"))
		var incompatible *errors.IncompatibleTypeError
		require.ErrorAs(t, err, &incompatible)
		assert.Equal(t, []datatype.DataType{datatype.Integer64}, incompatible.Types)

		var dfErr *errors.DataFrameError
		require.ErrorAs(t, err, &dfErr)
		assert.Equal(t, "Filter", dfErr.Op)
	})

	t.Run("missing column", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 1, 2))
		_, err := df.Filter(mustParse("y > 1"))
		var missing *errors.NonexistentColumnError
		require.ErrorAs(t, err, &missing)
	})
}

func TestDistinct(t *testing.T) {
	df := testutil.NewFrame(t,
		testutil.Col("a", 1, 1, 2, 2),
		testutil.Col("b", "x", "y", "x", "x"),
		testutil.Col("c", 1.0, 2.0, 3.0, 4.0),
	)

	t.Run("one column", func(t *testing.T) {
		actual, err := df.Distinct("a")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("a", 1, 2),
			testutil.Col("b", "x", "x"),
			testutil.Col("c", 1.0, 3.0),
		))
	})

	t.Run("two columns", func(t *testing.T) {
		actual, err := df.Distinct("a", "b")
		require.NoError(t, err)
		assert.Equal(t, 3, actual.Height())
	})

	t.Run("group columns join the key", func(t *testing.T) {
		grouped := testutil.GroupedFrame(t, df, []string{"b"})
		actual, err := grouped.Distinct("a")
		require.NoError(t, err)
		assert.Equal(t, 3, actual.Height())
		assert.Equal(t, [][]string{{"b"}}, actual.GroupLevels())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := df.Distinct("a", "a")
		var duplicate *errors.DuplicateColumnError
		require.ErrorAs(t, err, &duplicate)

		_, err = df.Distinct("z")
		var missing *errors.NonexistentColumnError
		require.ErrorAs(t, err, &missing)
	})
}

func TestUnique(t *testing.T) {
	df := testutil.NewFrame(t,
		testutil.Col("a", 1, 1, 2, 1),
		testutil.Col("b", "x", "x", "y", "x"),
	)
	testutil.RequireFramesEqual(t, df.Unique(), testutil.NewFrame(t,
		testutil.Col("a", 1, 2),
		testutil.Col("b", "x", "y"),
	))

	empty := testutil.NewFrame(t, testutil.TypedCol("a", datatype.Integer64))
	assert.Equal(t, 0, empty.Unique().Height())
}

func TestCluster(t *testing.T) {
	t.Run("ungrouped", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 2, 1, 2, 1, 3), testutil.Col("y", 0, 1, 2, 3, 4))
		actual, err := df.Cluster("x")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("x", 2, 2, 1, 1, 3),
			testutil.Col("y", 0, 2, 1, 3, 4),
		))

		again, err := actual.Cluster("x")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, again, actual)
	})

	t.Run("within groups", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t,
				testutil.Col("g", "a", "a", "b", "a", "b"),
				testutil.Col("x", 1, 2, 3, 1, 3),
				testutil.Col("y", 0, 1, 2, 3, 4),
			),
			[]string{"g"},
		)
		actual, err := df.Cluster("x")
		require.NoError(t, err)
		expected := testutil.GroupedFrame(t,
			testutil.NewFrame(t,
				testutil.Col("g", "a", "a", "b", "a", "b"),
				testutil.Col("x", 1, 1, 3, 2, 3),
				testutil.Col("y", 0, 3, 2, 1, 4),
			),
			[]string{"g"},
		)
		testutil.RequireFramesEqual(t, actual, expected)
	})

	t.Run("group column", func(t *testing.T) {
		df := testutil.GroupedFrame(t, testutil.NewFrame(t, testutil.Col("g", 1, 2)), []string{"g"})
		_, err := df.Cluster("g")
		var group *errors.GroupColumnError
		require.ErrorAs(t, err, &group)
		assert.Equal(t, "g", group.Column)
	})
}

func TestSort(t *testing.T) {
	t.Run("nulls first and nan last", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 3.0, nil, 1.0, math.NaN(), 2.0), testutil.Col("i", 0, 1, 2, 3, 4))
		actual, err := df.Sort("x")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("x", nil, 1.0, 2.0, 3.0, math.NaN()),
			testutil.Col("i", 1, 2, 4, 0, 3),
		))

		again, err := actual.Sort("x")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, again, actual)
	})

	t.Run("stable over several columns", func(t *testing.T) {
		df := testutil.NewFrame(t,
			testutil.Col("a", "b", "a", "b", "a"),
			testutil.Col("b", 2, 2, 1, 1),
			testutil.Col("i", 0, 1, 2, 3),
		)
		actual, err := df.Sort("a")
		require.NoError(t, err)
		i, err := actual.Column("i")
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(3), int64(0), int64(2)}, i.Values())

		actual, err = df.Sort("a", "b")
		require.NoError(t, err)
		i, err = actual.Column("i")
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(1), int64(2), int64(0)}, i.Values())
	})

	t.Run("within groups", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "b", "a", "b"), testutil.Col("x", 2, 4, 1, 3)),
			[]string{"g"},
		)
		actual, err := df.Sort("x")
		require.NoError(t, err)
		expected := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "b", "a", "b"), testutil.Col("x", 1, 3, 2, 4)),
			[]string{"g"},
		)
		testutil.RequireFramesEqual(t, actual, expected)
	})

	t.Run("validation", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("x", 1))
		_, err := df.Sort("x", "x")
		var duplicate *errors.DuplicateColumnError
		require.ErrorAs(t, err, &duplicate)

		_, err = df.Sort("y")
		var missing *errors.NonexistentColumnError
		require.ErrorAs(t, err, &missing)
	})
}

func TestSlice(t *testing.T) {
	df := testutil.NewFrame(t, testutil.Col("x", 0, 1, 2, 3, 4))

	t.Run("keeps original order", func(t *testing.T) {
		actual, err := df.Slice0(3, 1)
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t, testutil.Col("x", 1, 3)))

		actual, err = df.Slice1(1)
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t, testutil.Col("x", 0)))
	})

	t.Run("empty indexes", func(t *testing.T) {
		actual, err := df.Slice0()
		require.NoError(t, err)
		assert.Equal(t, 0, actual.Height())
	})

	t.Run("out of bounds", func(t *testing.T) {
		tests := []struct {
			name       string
			slice      func() error
			index      int
			oneIndexed bool
		}{
			{"past end", func() error { _, err := df.Slice0(5); return err }, 5, false},
			{"negative", func() error { _, err := df.Slice0(-1); return err }, -1, false},
			{"one-indexed zero", func() error { _, err := df.Slice1(0); return err }, 0, true},
			{"one-indexed past end", func() error { _, err := df.Slice1(6); return err }, 6, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var bounds *errors.IndexOutOfBoundsError
				require.ErrorAs(t, tt.slice(), &bounds)
				assert.Equal(t, tt.index, bounds.Index)
				assert.Equal(t, 5, bounds.Length)
				assert.Equal(t, tt.oneIndexed, bounds.OneIndexed)
			})
		}
	})

	t.Run("per group", func(t *testing.T) {
		grouped := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "b", "a", "b", "a"), testutil.Col("x", 0, 1, 2, 3, 4)),
			[]string{"g"},
		)
		actual, err := grouped.Slice0(0)
		require.NoError(t, err)
		expected := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", "a", "b"), testutil.Col("x", 0, 1)),
			[]string{"g"},
		)
		testutil.RequireFramesEqual(t, actual, expected)

		actual, err = grouped.Slice1(2)
		require.NoError(t, err)
		x, err := actual.Column("x")
		require.NoError(t, err)
		assert.Equal(t, []any{int64(2), int64(3)}, x.Values())

		_, err = grouped.Slice0(2)
		var bounds *errors.GroupIndexOutOfBoundsError
		require.ErrorAs(t, err, &bounds)
		assert.Equal(t, 2, bounds.Index)
		assert.Equal(t, 2, bounds.Length)
	})
}
