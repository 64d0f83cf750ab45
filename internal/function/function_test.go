package function_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/function"
)

func column(t *testing.T, dt datatype.DataType, values ...any) function.Value {
	t.Helper()
	a, err := array.FromTypedSequence(dt, values)
	require.NoError(t, err)
	return function.ColumnOf(a)
}

func scalar(t *testing.T, dt datatype.DataType, value any) function.Value {
	t.Helper()
	a, err := array.FromTypedSequence(dt, []any{value})
	require.NoError(t, err)
	return function.ScalarOf(a)
}

func weak(t *testing.T, value any) function.Value {
	t.Helper()
	a, err := array.FromSequence([]any{value})
	require.NoError(t, err)
	return function.Value{Array: a, Scalar: true, Weak: true}
}

func call(t *testing.T, name string, size int, args ...function.Value) (function.Value, error) {
	t.Helper()
	def, err := function.Lookup(name)
	require.NoError(t, err)
	return def.Call(function.Context{Size: size}, args)
}

func assertArray(t *testing.T, expected *array.Array, actual function.Value) {
	t.Helper()
	assert.True(t, expected.Equal(actual.Array), "expected %s, got %s", expected, actual.Array)
}

func mustArray(t *testing.T, dt datatype.DataType, values ...any) *array.Array {
	t.Helper()
	a, err := array.FromTypedSequence(dt, values)
	require.NoError(t, err)
	return a
}

func TestLookup(t *testing.T) {
	def, err := function.Lookup("mean")
	require.NoError(t, err)
	assert.Equal(t, function.Reduction, def.Kind)
	assert.Equal(t, 1, def.MinArgs)

	_, err = function.Lookup("nope")
	var unknown *errors.UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)

	assert.Contains(t, function.Names(), "row_index1")
	assert.IsIncreasing(t, function.Names())
}

func TestArity(t *testing.T) {
	_, err := call(t, "abs", 3)
	var arity *errors.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 0, arity.Actual)

	_, err = call(t, "if_else", 1, weak(t, true))
	require.ErrorAs(t, err, &arity)
}

func TestArithmeticWeakLiterals(t *testing.T) {
	ctx := function.Context{Size: 3}
	x := column(t, datatype.Integer32, int32(1), nil, int32(3))

	sum, err := function.Binary(function.Add, ctx, x, weak(t, 2))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer32, int32(3), nil, int32(5)), sum)

	mixed, err := function.Binary(function.Multiply, ctx, x, weak(t, 1.5))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Float64, 1.5, nil, 4.5), mixed)

	f := column(t, datatype.Float32, float32(1), float32(2), float32(4))
	narrow, err := function.Binary(function.Subtract, ctx, f, weak(t, 0.5))
	require.NoError(t, err)
	assert.Equal(t, datatype.Float32, narrow.Type())

	both, err := function.Binary(function.Add, ctx, weak(t, 2), weak(t, 3))
	require.NoError(t, err)
	assert.True(t, both.Scalar)
	assert.True(t, both.Weak)
	assert.Equal(t, int64(5), both.Array.Item(0))
}

func TestArithmeticWeakLiteralOutOfRange(t *testing.T) {
	ctx := function.Context{Size: 2}
	i8 := column(t, datatype.Integer8, int8(100), int8(-5))

	sum, err := function.Binary(function.Add, ctx, i8, weak(t, 300))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(400), int16(295)), sum)

	small, err := function.Binary(function.Add, ctx, i8, weak(t, 1))
	require.NoError(t, err)
	assert.Equal(t, datatype.Integer8, small.Type())

	w8 := column(t, datatype.Whole8, uint8(250), uint8(3))
	diff, err := function.Binary(function.Subtract, ctx, w8, weak(t, 300))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(-50), int16(-297)), diff)

	negated, err := function.Binary(function.Multiply, ctx, w8, weak(t, -1))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(-250), int16(-3)), negated)

	flipped, err := function.Binary(function.Subtract, ctx, weak(t, 1000), w8)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(750), int16(997)), flipped)
}

func TestArithmeticPromotion(t *testing.T) {
	ctx := function.Context{Size: 2}
	i8 := column(t, datatype.Integer8, int8(1), int8(2))
	u8 := column(t, datatype.Whole8, uint8(3), uint8(4))

	out, err := function.Binary(function.Add, ctx, i8, u8)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(4), int16(6)), out)

	s := column(t, datatype.String, "a", "b")
	_, err = function.Binary(function.Add, ctx, i8, s)
	var incompatible *errors.IncompatibleTypeError
	require.ErrorAs(t, err, &incompatible)

	joined, err := function.Binary(function.Add, ctx, s, scalar(t, datatype.String, "!"))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.String, "a!", "b!"), joined)
}

func TestDivision(t *testing.T) {
	ctx := function.Context{Size: 4}
	x := column(t, datatype.Integer64, int64(7), int64(-7), int64(1), int64(0))
	y := column(t, datatype.Integer64, int64(2), int64(2), int64(0), int64(0))

	quotient, err := function.Binary(function.Divide, ctx, x, y)
	require.NoError(t, err)
	assert.Equal(t, datatype.Float64, quotient.Type())
	assert.Equal(t, 3.5, quotient.Array.Item(0))
	assert.Equal(t, -3.5, quotient.Array.Item(1))
	assert.True(t, math.IsInf(quotient.Array.Float(2), 1))
	assert.True(t, math.IsNaN(quotient.Array.Float(3)))

	floored, err := function.Binary(function.FloorDivide, ctx, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(3), int64(-4), nil, nil), floored)
}

func TestModulo(t *testing.T) {
	ctx := function.Context{Size: 4}
	x := column(t, datatype.Integer64, int64(7), int64(-7), int64(7), int64(7))
	y := column(t, datatype.Integer64, int64(3), int64(3), int64(-3), int64(0))

	out, err := function.Binary(function.Modulo, ctx, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(1), int64(2), int64(-2), nil), out)

	fx := column(t, datatype.Float64, 7.5, -7.5, math.Inf(1), 1.0)
	fy := column(t, datatype.Float64, 2.0, 2.0, 2.0, math.Inf(-1))
	fout, err := function.Binary(function.Modulo, ctx, fx, fy)
	require.NoError(t, err)
	assert.Equal(t, 1.5, fout.Array.Item(0))
	assert.Equal(t, 0.5, fout.Array.Item(1))
	assert.True(t, math.IsNaN(fout.Array.Float(2)))
	assert.True(t, math.IsInf(fout.Array.Float(3), -1))
}

func TestPower(t *testing.T) {
	ctx := function.Context{Size: 3}
	x := column(t, datatype.Integer32, int32(2), int32(0), int32(-3))

	squared, err := function.Binary(function.Power, ctx, x, weak(t, 2))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer32, int32(4), int32(0), int32(9)), squared)

	zero, err := function.Binary(function.Power, ctx, x, weak(t, 0))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer32, int32(1), int32(1), int32(1)), zero)

	signed := column(t, datatype.Integer64, int64(1), int64(-1), int64(2))
	float, err := function.Binary(function.Power, ctx, x, signed)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Float64, 2.0, math.Inf(1), 9.0), float)

	whole := column(t, datatype.Whole8, uint8(3), uint8(2), uint8(1))
	kept, err := function.Binary(function.Power, ctx, x, whole)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer32, int32(8), int32(0), int32(-3)), kept)

	viaFunction, err := call(t, "pow", 3, x, weak(t, 0.5))
	require.NoError(t, err)
	assert.Equal(t, datatype.Float64, viaFunction.Type())
}

func TestComparisons(t *testing.T) {
	ctx := function.Context{Size: 4}
	x := column(t, datatype.Float64, 1.0, nil, math.NaN(), 2.0)
	y := column(t, datatype.Integer64, int64(1), nil, int64(5), nil)

	eq, err := function.Binary(function.Equal, ctx, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, true, true, false, false), eq)

	ne, err := function.Binary(function.NotEqual, ctx, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, false, true, true), ne)

	gt, err := function.Binary(function.Greater, ctx, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, nil, true, nil), gt)

	nan, err := function.Binary(function.Equal, ctx, x, weak(t, math.NaN()))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, false, true, false), nan)

	s := column(t, datatype.String, "a", "b", "c", "d")
	_, err = function.Binary(function.Less, ctx, x, s)
	var incompatible *errors.IncompatibleTypeError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, "<", incompatible.Operation)
}

func TestFloat32LiteralComparison(t *testing.T) {
	ctx := function.Context{Size: 1}
	x := column(t, datatype.Float32, float32(0.1))
	eq, err := function.Binary(function.Equal, ctx, x, weak(t, 0.1))
	require.NoError(t, err)
	assert.Equal(t, true, eq.Array.Item(0))
}

func TestThreeValuedLogic(t *testing.T) {
	ctx := function.Context{Size: 9}
	l := column(t, datatype.Boolean, true, true, true, false, false, false, nil, nil, nil)
	r := column(t, datatype.Boolean, true, false, nil, true, false, nil, true, false, nil)

	and, err := function.Binary(function.And, ctx, l, r)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, true, false, nil, false, false, false, nil, false, nil), and)

	or, err := function.Binary(function.Or, ctx, l, r)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, true, true, true, true, false, nil, true, nil, nil), or)

	not, err := function.Unary(function.Not, ctx, l)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, false, false, true, true, true, nil, nil, nil), not)

	_, err = function.Binary(function.And, ctx, l, column(t, datatype.Integer64, make([]any, 9)...))
	require.Error(t, err)
}

func TestNegate(t *testing.T) {
	ctx := function.Context{Size: 2}
	out, err := function.Unary(function.Negate, ctx, column(t, datatype.Whole8, uint8(1), nil))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(-1), nil), out)

	_, err = function.Unary(function.Negate, ctx, column(t, datatype.String, "a", "b"))
	require.Error(t, err)
}

func TestConstants(t *testing.T) {
	n, err := call(t, "n", 4)
	require.NoError(t, err)
	assert.True(t, n.Scalar)
	assert.Equal(t, int64(4), n.Array.Item(0))

	index, err := call(t, "row_index1", 3)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(1), int64(2), int64(3)), index)
}

func TestElementwiseFunctions(t *testing.T) {
	x := column(t, datatype.Integer64, int64(-4), nil, int64(9))

	abs, err := call(t, "abs", 3, x)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(4), nil, int64(9)), abs)

	root, err := call(t, "sqrt", 3, abs)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Float64, 2.0, nil, 3.0), root)

	floor, err := call(t, "floor", 2, column(t, datatype.Float32, float32(1.5), float32(-1.5)))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Float32, float32(1), float32(-2)), floor)

	same, err := call(t, "ceil", 3, x)
	require.NoError(t, err)
	assertArray(t, x.Array, same)

	nan, err := call(t, "is_nan", 3, column(t, datatype.Float64, math.NaN(), 1.0, nil))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, true, false, nil), nan)

	finite, err := call(t, "is_finite", 3, column(t, datatype.Float64, math.Inf(-1), 1.0, nil))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, true, nil), finite)

	null, err := call(t, "is_null", 3, x)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, false, true, false), null)
}

func TestNothingArguments(t *testing.T) {
	nothing := function.ColumnOf(array.Nulls(datatype.Nothing, 2))

	out, err := call(t, "sqrt", 2, nothing)
	require.NoError(t, err)
	assertArray(t, array.Nulls(datatype.Nothing, 2), out)

	null, err := call(t, "is_null", 2, nothing)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Boolean, true, true), null)

	mean, err := call(t, "mean", 2, nothing)
	require.NoError(t, err)
	assert.True(t, mean.Scalar)
	assert.Equal(t, datatype.Nothing, mean.Type())
}

func TestCasts(t *testing.T) {
	s := column(t, datatype.String, "1", "2", nil)
	out, err := call(t, "to_integer", 3, s)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(1), int64(2), nil), out)

	huge, err := call(t, "to_integer", 3, column(t, datatype.Float64, 1e30, math.NaN(), -2.7))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, nil, nil, int64(-2)), huge)

	_, err = call(t, "to_float", 1, column(t, datatype.String, "x"))
	var castErr *errors.CastError
	require.ErrorAs(t, err, &castErr)
	assert.Equal(t, "x", castErr.Value)

	text, err := call(t, "to_string", 3, column(t, datatype.Float64, 4.0, -1.5, 0.00032))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.String, "4.0", "-1.5", "0.00032"), text)

	flags, err := call(t, "to_string", 2, column(t, datatype.Boolean, true, false))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.String, "true", "false"), flags)
}

func TestIfElse(t *testing.T) {
	condition := column(t, datatype.Boolean, true, false, nil)
	x := column(t, datatype.Integer16, int16(1), int16(2), int16(3))

	out, err := call(t, "if_else", 3, condition, x, weak(t, 0))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(1), int16(0), nil), out)

	defaulted, err := call(t, "if_else", 3, condition, x)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(1), nil, nil), defaulted)

	_, err = call(t, "if_else", 3, x, x, x)
	var invalid *errors.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestParallelExtrema(t *testing.T) {
	x := column(t, datatype.Integer64, int64(1), int64(5), nil)
	y := column(t, datatype.Float64, 2.0, 3.0, 4.0)

	pmax, err := call(t, "pmax", 3, x, y)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Float64, 2.0, 5.0, nil), pmax)

	pmin, err := call(t, "pmin", 3, x, weak(t, 3))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer64, int64(1), int64(3), nil), pmin)

	i8 := column(t, datatype.Integer8, int8(1), int8(-2), nil)
	wide, err := call(t, "pmax", 3, weak(t, 300), i8)
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(300), int16(300), nil), wide)

	low, err := call(t, "pmin", 3, i8, weak(t, -200))
	require.NoError(t, err)
	assertArray(t, mustArray(t, datatype.Integer16, int16(-200), int16(-200), nil), low)
}

func TestReductions(t *testing.T) {
	x := column(t, datatype.Integer32, int32(4), int32(1), int32(3), int32(2))
	tests := []struct {
		name     string
		expected any
	}{
		{"sum", int64(10)},
		{"mean", 2.5},
		{"median", 2.5},
		{"max", int32(4)},
		{"min", int32(1)},
		{"first", int32(4)},
		{"last", int32(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := call(t, tt.name, 4, x)
			require.NoError(t, err)
			assert.True(t, out.Scalar)
			assert.Equal(t, tt.expected, out.Array.Item(0))
		})
	}

	variance, err := call(t, "var", 4, x)
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3.0, variance.Array.Item(0), 1e-12)

	std, err := call(t, "std", 4, x)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5.0/3.0), std.Array.Item(0), 1e-12)

	q, err := call(t, "quantile", 4, x, weak(t, 0.25))
	require.NoError(t, err)
	assert.InDelta(t, 1.75, q.Array.Item(0), 1e-12)
}

func TestReductionNulls(t *testing.T) {
	x := column(t, datatype.Float64, 1.0, nil, 3.0)
	for _, name := range []string{"sum", "mean", "median", "std", "var"} {
		out, err := call(t, name, 3, x)
		require.NoError(t, err, name)
		assert.Nil(t, out.Array.Item(0), name)
	}

	max, err := call(t, "max", 3, x)
	require.NoError(t, err)
	assert.Equal(t, 3.0, max.Array.Item(0))

	withNaN, err := call(t, "max", 3, column(t, datatype.Float64, 1.0, math.NaN(), nil))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(withNaN.Array.Float(0)))

	empty, err := call(t, "sum", 0, column(t, datatype.Whole16))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Array.Item(0))

	single, err := call(t, "var", 1, column(t, datatype.Float64, 1.0))
	require.NoError(t, err)
	assert.Nil(t, single.Array.Item(0))
}

func TestQuantileArgument(t *testing.T) {
	x := column(t, datatype.Float64, 1.0, 2.0)
	_, err := call(t, "quantile", 2, x, weak(t, 1.5))
	var invalid *errors.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	_, err = call(t, "quantile", 2, x, x)
	require.ErrorAs(t, err, &invalid)
}

func TestAnyAll(t *testing.T) {
	tests := []struct {
		values    []any
		anyResult any
		allResult any
	}{
		{[]any{true, false}, true, false},
		{[]any{false, nil}, nil, false},
		{[]any{true, nil}, true, nil},
		{[]any{true, true}, true, true},
		{[]any{}, false, true},
	}
	for _, tt := range tests {
		v := column(t, datatype.Boolean, tt.values...)
		anyOut, err := call(t, "any", len(tt.values), v)
		require.NoError(t, err)
		assert.Equal(t, tt.anyResult, anyOut.Array.Item(0), "any%v", tt.values)

		allOut, err := call(t, "all", len(tt.values), v)
		require.NoError(t, err)
		assert.Equal(t, tt.allResult, allOut.Array.Item(0), "all%v", tt.values)
	}
}

func TestSame(t *testing.T) {
	out, err := call(t, "same", 3, column(t, datatype.String, "a", "a", "a"))
	require.NoError(t, err)
	assert.Equal(t, "a", out.Array.Item(0))

	empty, err := call(t, "same", 0, column(t, datatype.String))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Array.Len())

	_, err = call(t, "same", 4, column(t, datatype.Integer64, int64(1), nil, int64(2), int64(1)))
	var notSame *errors.NotSameError
	require.ErrorAs(t, err, &notSame)
	assert.Equal(t, []any{int64(1), nil, int64(2)}, notSame.Values)
}

func TestInterp(t *testing.T) {
	ts := column(t, datatype.Float64, 2.0, 3.0, 5.0)
	ys := column(t, datatype.Float64, 0.3, 0.1, 0.8)

	out, err := call(t, "interp", 3, weak(t, 2.5), ts, ys)
	require.NoError(t, err)
	assert.True(t, out.Scalar)
	assert.InDelta(t, 0.2, out.Array.Item(0), 1e-12)

	points := column(t, datatype.Float64, 3.0, 1.0, 6.0, nil, math.NaN())
	many, err := call(t, "interp", 3, points, ts, ys)
	require.NoError(t, err)
	assert.Equal(t, 0.1, many.Array.Item(0))
	assert.Nil(t, many.Array.Item(1))
	assert.Nil(t, many.Array.Item(2))
	assert.Nil(t, many.Array.Item(3))
	assert.True(t, math.IsNaN(many.Array.Float(4)))

	_, err = call(t, "interp", 3, weak(t, 2.5), column(t, datatype.Float64, 3.0, 2.0, 5.0), ys)
	var invalid *errors.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	_, err = call(t, "interp", 3, weak(t, 2.5), column(t, datatype.Float64, 2.0, nil, 5.0), ys)
	require.ErrorAs(t, err, &invalid)
}

func TestTrapz(t *testing.T) {
	ts := column(t, datatype.Integer64, int64(0), int64(1), int64(3))
	ys := column(t, datatype.Float64, 1.0, 3.0, 3.0)

	out, err := call(t, "trapz", 3, ts, ys)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out.Array.Item(0), 1e-12)

	null, err := call(t, "trapz", 3, ts, column(t, datatype.Float64, 1.0, nil, 3.0))
	require.NoError(t, err)
	assert.Nil(t, null.Array.Item(0))

	_, err = call(t, "trapz", 3, column(t, datatype.Integer64, int64(1), int64(0), int64(3)), ys)
	var invalid *errors.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}
