package io_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/io"
	"github.com/paveg/tabeline/internal/testutil"
)

func TestReadCSV(t *testing.T) {
	t.Run("infers column types", func(t *testing.T) {
		input := "name,age,score,active,note\n" +
			"Alice,25,1.5,true,x\n" +
			"Bob,30,2,FALSE,\n" +
			"Carol,,nan,true,3\n"

		df, err := io.ReadCSV(strings.NewReader(input), io.DefaultCSVOptions())
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, df, testutil.NewFrame(t,
			testutil.Col("name", "Alice", "Bob", "Carol"),
			testutil.TypedCol("age", datatype.Integer64, 25, 30, nil),
			testutil.Col("score", 1.5, 2.0, math.NaN()),
			testutil.Col("active", true, false, true),
			testutil.Col("note", "x", nil, "3"),
		))
	})

	t.Run("empty column is nothing", func(t *testing.T) {
		df, err := io.ReadCSV(strings.NewReader("a,b\n1,\n2,\n"), io.DefaultCSVOptions())
		require.NoError(t, err)
		b, err := df.Column("b")
		require.NoError(t, err)
		assert.Equal(t, datatype.Nothing, b.DataType())
		assert.Equal(t, 2, b.Len())
	})

	t.Run("header only", func(t *testing.T) {
		df, err := io.ReadCSV(strings.NewReader("a,b\n"), io.DefaultCSVOptions())
		require.NoError(t, err)
		height, width := df.Shape()
		assert.Equal(t, 0, height)
		assert.Equal(t, 2, width)
	})

	t.Run("empty input", func(t *testing.T) {
		df, err := io.ReadCSV(strings.NewReader(""), io.DefaultCSVOptions())
		require.NoError(t, err)
		height, width := df.Shape()
		assert.Equal(t, 0, height)
		assert.Equal(t, 0, width)
	})

	t.Run("options", func(t *testing.T) {
		options := io.CSVOptions{Delimiter: ';', Comment: '#', NullValue: "NA"}
		input := "# exported\nx;y\n1;NA\n2;b\n"
		df, err := io.ReadCSV(strings.NewReader(input), options)
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, df, testutil.NewFrame(t,
			testutil.Col("x", 1, 2),
			testutil.Col("y", nil, "b"),
		))
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := io.ReadCSV(strings.NewReader("a,b\n1\n"), io.DefaultCSVOptions())
		assert.Error(t, err)
	})

	t.Run("duplicate headers", func(t *testing.T) {
		_, err := io.ReadCSV(strings.NewReader("a,a\n1,2\n"), io.DefaultCSVOptions())
		var duplicate *errors.DuplicateColumnError
		require.ErrorAs(t, err, &duplicate)
	})
}

func TestWriteCSV(t *testing.T) {
	df := testutil.NewFrame(t,
		testutil.Col("name", "Alice", "Bob, Jr."),
		testutil.Col("score", 1.0, nil),
		testutil.Col("ok", true, false),
	)

	t.Run("formats values", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.WriteCSV(&buf, df, io.DefaultCSVOptions()))
		assert.Equal(t, "name,score,ok\nAlice,1.0,true\n\"Bob, Jr.\",,false\n", buf.String())
	})

	t.Run("null value and delimiter", func(t *testing.T) {
		var buf bytes.Buffer
		options := io.CSVOptions{Delimiter: '\t', NullValue: "NA"}
		require.NoError(t, io.WriteCSV(&buf, df, options))
		assert.Equal(t, "name\tscore\tok\nAlice\t1.0\ttrue\nBob, Jr.\tNA\tfalse\n", buf.String())
	})

	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.WriteCSV(&buf, df, io.DefaultCSVOptions()))
		actual, err := io.ReadCSV(&buf, io.DefaultCSVOptions())
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, df)
	})

	t.Run("file round trip", func(t *testing.T) {
		path := testutil.TempFile(t, "frame.csv")
		require.NoError(t, io.WriteCSVFile(path, df, io.DefaultCSVOptions()))
		actual, err := io.ReadCSVFile(path, io.DefaultCSVOptions())
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, df)
	})

	t.Run("grouped frame", func(t *testing.T) {
		var buf bytes.Buffer
		err := io.WriteCSV(&buf, testutil.GroupedFrame(t, df, []string{"ok"}), io.DefaultCSVOptions())
		var hasGroups *errors.HasGroupsError
		require.ErrorAs(t, err, &hasGroups)
	})
}
