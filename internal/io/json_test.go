package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/io"
	"github.com/paveg/tabeline/internal/testutil"
)

func TestReadJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		input := `[
			{"id": 1, "name": "Alice", "score": 1.5, "active": true},
			{"id": 2, "name": "Bob", "score": 2, "active": null},
			{"id": 3, "name": null, "extra": "x"}
		]`
		df, err := io.ReadJSON(strings.NewReader(input))
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, df, testutil.NewFrame(t,
			testutil.Col("id", 1, 2, 3),
			testutil.Col("name", "Alice", "Bob", nil),
			testutil.Col("score", 1.5, 2.0, nil),
			testutil.Col("active", true, nil, nil),
			testutil.Col("extra", nil, nil, "x"),
		))
	})

	t.Run("empty array", func(t *testing.T) {
		df, err := io.ReadJSON(strings.NewReader(`[]`))
		require.NoError(t, err)
		assert.Equal(t, 0, df.Height())
		assert.Equal(t, 0, df.Width())
	})

	t.Run("lines with limit", func(t *testing.T) {
		input := "{\"x\": 1}\n\n{\"x\": 2}\n{\"x\": 3}\n"
		options := io.DefaultJSONOptions()
		options.Format = io.JSONLines
		options.MaxRecords = 2
		df, err := io.NewJSONReader(strings.NewReader(input), options).Read()
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, df, testutil.NewFrame(t, testutil.Col("x", 1, 2)))
	})

	t.Run("mixed types", func(t *testing.T) {
		_, err := io.ReadJSON(strings.NewReader(`[{"x": 1}, {"x": "one"}]`))
		assert.Error(t, err)
	})

	t.Run("nested values", func(t *testing.T) {
		_, err := io.ReadJSON(strings.NewReader(`[{"x": [1, 2]}]`))
		assert.Error(t, err)
	})
}

func TestWriteJSON(t *testing.T) {
	df := testutil.NewFrame(t,
		testutil.Col("b", "x", nil),
		testutil.TypedCol("a", datatype.Integer32, 1, 2),
	)

	t.Run("array keeps column order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.WriteJSON(&buf, df))
		assert.Equal(t, "[{\"b\":\"x\",\"a\":1},{\"b\":null,\"a\":2}]\n", buf.String())
	})

	t.Run("lines", func(t *testing.T) {
		var buf bytes.Buffer
		options := io.DefaultJSONOptions()
		options.Format = io.JSONLines
		require.NoError(t, io.NewJSONWriter(&buf, options).Write(df))
		assert.Equal(t, "{\"b\":\"x\",\"a\":1}\n{\"b\":null,\"a\":2}\n", buf.String())
	})

	t.Run("round trip widens integers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.WriteJSON(&buf, df))
		actual, err := io.ReadJSON(&buf)
		require.NoError(t, err)
		testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
			testutil.Col("b", "x", nil),
			testutil.Col("a", 1, 2),
		))
	})
}
