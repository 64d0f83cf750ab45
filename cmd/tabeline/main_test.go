package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/config"
	tabio "github.com/paveg/tabeline/internal/io"
	"github.com/paveg/tabeline/internal/testutil"
)

const salaries = `dept,name,salary
eng,a,100
eng,b,200
ops,c,50
ops,d,
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := testutil.TempFile(t, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	original := config.GetGlobalConfig()
	t.Cleanup(func() { config.SetGlobalConfig(original) })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPipeline(t *testing.T) {
	in := writeInput(t, "salaries.csv", salaries)
	out := testutil.TempFile(t, "totals.csv")

	code, _, stderr := runCLI(t,
		"-in", in,
		"-filter", "salary > 60",
		"-mutate", "bonus=salary * 0.1",
		"-group-by", "dept",
		"-summarize", "total=sum(salary)",
		"-summarize", "bonus=sum(bonus)",
		"-sort", "total",
		"-select", "dept,total",
		"-out", out,
	)
	require.Equal(t, 0, code, stderr)

	actual, err := tabio.ReadFile(out, nil)
	require.NoError(t, err)
	testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
		testutil.Col("dept", "eng"),
		testutil.Col("total", 300),
	))
}

func TestRunStacksInputs(t *testing.T) {
	first := writeInput(t, "first.csv", "x\n1\n2\n")
	second := writeInput(t, "second.csv", "x\n3\n")
	out := testutil.TempFile(t, "all.json")

	code, _, stderr := runCLI(t, "-in", first, "-in", second, "-workers", "2", "-mutate", "y=x * 2", "-out", out)
	require.Equal(t, 0, code, stderr)

	actual, err := tabio.ReadFile(out, nil)
	require.NoError(t, err)
	testutil.RequireFramesEqual(t, actual, testutil.NewFrame(t,
		testutil.Col("x", 1, 2, 3),
		testutil.Col("y", 2, 4, 6),
	))
}

func TestRunPrintsTable(t *testing.T) {
	in := writeInput(t, "salaries.csv", salaries)

	code, stdout, stderr := runCLI(t, "-in", in, "-group-by", "dept", "-sort", "salary")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "DataFrame [4 x 3]")
	assert.Contains(t, stdout, "Groups: [dept]")
	assert.Contains(t, stdout, "salary")
	assert.Contains(t, stdout, "null")
}

func TestRunSchema(t *testing.T) {
	in := writeInput(t, "salaries.csv", salaries)

	code, stdout, stderr := runCLI(t, "-in", in, "-schema")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Integer64")
	assert.Contains(t, stdout, "String")
	assert.Contains(t, stdout, "rows")
}

func TestRunStats(t *testing.T) {
	in := writeInput(t, "salaries.csv", salaries)

	code, _, stderr := runCLI(t, "-in", in, "-filter", "salary > 60", "-stats", "-schema")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "rows out")
	assert.Contains(t, stderr, "read")
	assert.Contains(t, stderr, "filter")
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "tabeline")
	assert.Contains(t, stdout, "Go Version:")
}

func TestRunConfigFile(t *testing.T) {
	in := writeInput(t, "values.csv", "x;y\n1;a\n")
	cfg := writeInput(t, "tabeline.yaml", "csv_delimiter: \";\"\nlog_level: debug\n")

	code, stdout, stderr := runCLI(t, "-in", in, "-config", cfg)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "DataFrame [1 x 2]")
	assert.Contains(t, stderr, "read input")
}

func TestRunErrors(t *testing.T) {
	in := writeInput(t, "salaries.csv", salaries)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no input", nil, 2},
		{"unknown flag", []string{"-in", in, "-bogus"}, 2},
		{"positional argument", []string{"-in", in, "extra"}, 2},
		{"bad log level", []string{"-in", in, "-log-level", "loud"}, 2},
		{"missing config", []string{"-in", in, "-config", testutil.TempFile(t, "none.yaml")}, 2},
		{"missing input", []string{"-in", testutil.TempFile(t, "none.csv")}, 1},
		{"parse error", []string{"-in", in, "-filter", "salary >"}, 1},
		{"missing column", []string{"-in", in, "-filter", "wage > 1"}, 1},
		{"bad assignment", []string{"-in", in, "-mutate", "bonus"}, 1},
		{"bad group order", []string{"-in", in, "-group-by", "dept", "-group-order", "random"}, 1},
		{"summarize without groups", []string{"-in", in, "-summarize", "n=n()"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, "error")
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Usage: tabeline")
}

func TestParseAssignments(t *testing.T) {
	assignments, err := parseAssignments("mutate", []string{"flag=x == 1", " total = sum(x)"})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "flag", assignments[0].Name)
	assert.Equal(t, "(x == 1)", assignments[0].Expr.String())
	assert.Equal(t, "total", assignments[1].Name)

	for _, bad := range []string{"x", "=x", "y==1", "y=1 +"} {
		_, err := parseAssignments("mutate", []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestSplitColumns(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitColumns(" a, ,b,"))
	assert.Nil(t, splitColumns(""))
}
