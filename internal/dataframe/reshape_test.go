package dataframe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/testutil"
)

func TestSpread(t *testing.T) {
	t.Run("one row per group", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t,
				testutil.Col("grades", 0, 0, 1, 1),
				testutil.Col("sex", "M", "F", "M", "F"),
				testutil.Col("count", 8, 9, 9, 10),
			),
			[]string{"sex"},
		)
		actual, err := df.Spread("grades", "count")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("sex", "M", "F"),
			testutil.Col("0", 8, 9),
			testutil.Col("1", 9, 10),
		))
	})

	t.Run("missing combinations are null", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t,
				testutil.Col("id", 1, 1, 2),
				testutil.Col("key", "a", "b", "a"),
				testutil.Col("value", 1.5, 2.5, nil),
			),
			[]string{"id"},
		)
		actual, err := df.Spread("key", "value")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("id", 1, 2),
			testutil.TypedCol("a", datatype.Float64, 1.5, nil),
			testutil.TypedCol("b", datatype.Float64, 2.5, nil),
		))
	})

	t.Run("null key", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", 1, 1), testutil.Col("k", "x", nil), testutil.Col("v", 1, 2)),
			[]string{"g"},
		)
		actual, err := df.Spread("k", "v")
		require.NoError(t, err)
		assert.Equal(t, []string{"g", "x", "null"}, actual.ColumnNames())
	})

	t.Run("requires groups", func(t *testing.T) {
		df := testutil.NewFrame(t, testutil.Col("k", "a"), testutil.Col("v", 1))
		_, err := df.Spread("k", "v")
		var noGroups *errors.NoGroupsError
		require.ErrorAs(t, err, &noGroups)
	})

	t.Run("name collides with group column", func(t *testing.T) {
		df := testutil.GroupedFrame(t,
			testutil.NewFrame(t, testutil.Col("g", 1), testutil.Col("k", "g"), testutil.Col("v", 1)),
			[]string{"g"},
		)
		_, err := df.Spread("k", "v")
		var duplicate *errors.DuplicateColumnError
		require.ErrorAs(t, err, &duplicate)
	})
}

func TestGather(t *testing.T) {
	df := testutil.NewFrame(t,
		testutil.Col("id", 1, 2),
		testutil.Col("a", 10, 20),
		testutil.Col("b", 1.5, 2.5),
	)

	t.Run("stacks columns", func(t *testing.T) {
		actual, err := df.Gather("key", "value", "a", "b")
		require.NoError(t, err)
		expected := testutil.GroupedFrame(t,
			testutil.NewFrame(t,
				testutil.Col("id", 1, 2, 1, 2),
				testutil.Col("key", "a", "a", "b", "b"),
				testutil.Col("value", 10.0, 20.0, 1.5, 2.5),
			),
			[]string{"key"},
		)
		testutil.RequireFramesEqual(t, actual, expected)
	})

	t.Run("spread undoes gather", func(t *testing.T) {
		grouped := testutil.GroupedFrame(t, df, []string{"id"})
		gathered, err := grouped.Gather("key", "value", "a", "b")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"id"}, {"key"}}, gathered.GroupLevels())

		regrouped, err := gathered.Ungroup()
		require.NoError(t, err)
		spread, err := regrouped.Spread("key", "value")
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, spread, testutil.NewFrame(t,
			testutil.Col("id", 1, 2),
			testutil.Col("a", 10.0, 20.0),
			testutil.Col("b", 1.5, 2.5),
		))
	})

	t.Run("incompatible types", func(t *testing.T) {
		mixed := testutil.NewFrame(t, testutil.Col("a", 1), testutil.Col("b", "x"))
		_, err := mixed.Gather("key", "value", "a", "b")
		var incompatible *errors.IncompatibleTypeError
		require.ErrorAs(t, err, &incompatible)
		assert.Equal(t, "gather", incompatible.Operation)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := df.Gather("id", "value", "a")
		var exists *errors.ColumnAlreadyExistsError
		require.ErrorAs(t, err, &exists)

		_, err = df.Gather("same", "same", "a")
		var duplicate *errors.DuplicateColumnError
		require.ErrorAs(t, err, &duplicate)

		_, err = df.Gather("key", "value", "missing")
		var missing *errors.NonexistentColumnError
		require.ErrorAs(t, err, &missing)
	})
}
