package function

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// statisticType is the result type of mean-like reductions: floats keep
// their width and everything else becomes Float64.
func statisticType(dt datatype.DataType) datatype.DataType {
	if dt == datatype.Float32 {
		return datatype.Float32
	}
	return datatype.Float64
}

func floatScalar(dt datatype.DataType, v float64) Value {
	b := array.NewBuilder(dt, 1)
	b.AppendFloat(v)
	return ScalarOf(b.Finish())
}

// samples returns the elements of a numeric array as float64 and whether
// any element was null.
func samples(name string, a *array.Array) ([]float64, bool, error) {
	dt := a.DataType()
	if !dt.IsNumeric() && dt != datatype.Boolean {
		return nil, false, incompatible(name, dt)
	}
	if a.NullCount() > 0 {
		return nil, true, nil
	}
	xs := make([]float64, a.Len())
	for i := range xs {
		xs[i] = a.Float(i)
	}
	return xs, false, nil
}

func sum(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	dt := a.DataType()
	var target datatype.DataType
	switch {
	case dt.IsFloat():
		target = dt
	case dt.IsWhole():
		target = datatype.Whole64
	case dt.IsInteger() || dt == datatype.Boolean:
		target = datatype.Integer64
	default:
		return Value{}, incompatible("sum", dt)
	}
	if a.NullCount() > 0 {
		return NullScalar(target), nil
	}

	b := array.NewBuilder(target, 1)
	switch {
	case target.IsFloat():
		xs, _, _ := samples("sum", a)
		b.AppendFloat(floats.Sum(xs))
	case target == datatype.Whole64:
		var total uint64
		for i := range a.Len() {
			total += a.Uint(i)
		}
		b.AppendUint(total)
	default:
		var total int64
		for i := range a.Len() {
			total += a.Int(i)
		}
		b.AppendInt(total)
	}
	return ScalarOf(b.Finish()), nil
}

func mean(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	xs, null, err := samples("mean", a)
	if err != nil {
		return Value{}, err
	}
	dt := statisticType(a.DataType())
	if null || len(xs) == 0 {
		return NullScalar(dt), nil
	}
	return floatScalar(dt, stat.Mean(xs, nil)), nil
}

func variance(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	xs, null, err := samples("var", a)
	if err != nil {
		return Value{}, err
	}
	dt := statisticType(a.DataType())
	if null || len(xs) < 2 {
		return NullScalar(dt), nil
	}
	return floatScalar(dt, stat.Variance(xs, nil)), nil
}

func standardDeviation(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	xs, null, err := samples("std", a)
	if err != nil {
		return Value{}, err
	}
	dt := statisticType(a.DataType())
	if null || len(xs) < 2 {
		return NullScalar(dt), nil
	}
	return floatScalar(dt, stat.StdDev(xs, nil)), nil
}

// linearQuantile interpolates between the order statistics around
// (n-1)*q. Any NaN makes the result NaN.
func linearQuantile(xs []float64, q float64) float64 {
	for _, x := range xs {
		if math.IsNaN(x) {
			return math.NaN()
		}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func median(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	xs, null, err := samples("median", a)
	if err != nil {
		return Value{}, err
	}
	dt := statisticType(a.DataType())
	if null || len(xs) == 0 {
		return NullScalar(dt), nil
	}
	return floatScalar(dt, linearQuantile(xs, 0.5)), nil
}

func quantile(_ Context, args []Value) (Value, error) {
	a, qv := args[0].Array, args[1]
	if !qv.Scalar || !qv.Type().IsNumeric() || qv.Array.IsNull(0) {
		return Value{}, &errors.InvalidArgumentError{Function: "quantile", Message: "q must be a numeric scalar"}
	}
	q := qv.Array.Float(0)
	if !(q >= 0 && q <= 1) {
		return Value{}, &errors.InvalidArgumentError{Function: "quantile", Message: "q must be between 0 and 1"}
	}
	xs, null, err := samples("quantile", a)
	if err != nil {
		return Value{}, err
	}
	dt := statisticType(a.DataType())
	if null || len(xs) == 0 {
		return NullScalar(dt), nil
	}
	return floatScalar(dt, linearQuantile(xs, q)), nil
}

// extreme scans the non-null elements of a for the greatest (sign 1) or
// least (sign -1) under array.Compare.
func extreme(a *array.Array, sign int) Value {
	best := -1
	for i := range a.Len() {
		if a.IsNull(i) {
			continue
		}
		if best < 0 || sign*array.Compare(a, i, a, best) > 0 {
			best = i
		}
	}
	if best < 0 {
		return NullScalar(a.DataType())
	}
	return ScalarOf(a.Take([]int{best}))
}

func maximum(_ Context, args []Value) (Value, error) {
	return extreme(args[0].Array, 1), nil
}

func minimum(_ Context, args []Value) (Value, error) {
	return extreme(args[0].Array, -1), nil
}

func requireBoolean(name string, a *array.Array) error {
	if a.DataType() != datatype.Boolean {
		return incompatible(name, a.DataType())
	}
	return nil
}

func boolScalar(v bool, null bool) Value {
	b := array.NewBuilder(datatype.Boolean, 1)
	if null {
		b.AppendNull()
	} else {
		b.AppendBool(v)
	}
	return ScalarOf(b.Finish())
}

func anyTrue(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	if err := requireBoolean("any", a); err != nil {
		return Value{}, err
	}
	for i := range a.Len() {
		if !a.IsNull(i) && a.Bool(i) {
			return boolScalar(true, false), nil
		}
	}
	return boolScalar(false, a.NullCount() > 0), nil
}

func allTrue(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	if err := requireBoolean("all", a); err != nil {
		return Value{}, err
	}
	for i := range a.Len() {
		if !a.IsNull(i) && !a.Bool(i) {
			return boolScalar(false, false), nil
		}
	}
	return boolScalar(true, a.NullCount() > 0), nil
}

func first(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	if a.Len() == 0 {
		return NullScalar(a.DataType()), nil
	}
	return ScalarOf(a.Take([]int{0})), nil
}

func last(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	if a.Len() == 0 {
		return NullScalar(a.DataType()), nil
	}
	return ScalarOf(a.Take([]int{a.Len() - 1})), nil
}

// same returns the single distinct value of its argument. An empty argument
// gives an empty result.
func same(_ Context, args []Value) (Value, error) {
	a := args[0].Array
	if a.Len() == 0 {
		return ColumnOf(a), nil
	}

	var distinct []int
	seen := make(map[string]bool)
	var key []byte
	for i := range a.Len() {
		key = a.AppendKey(key[:0], i)
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		distinct = append(distinct, i)
	}
	if len(distinct) > 1 {
		values := make([]any, len(distinct))
		for k, i := range distinct {
			values[k] = a.Item(i)
		}
		return Value{}, &errors.NotSameError{Values: values}
	}
	return ScalarOf(a.Take([]int{0})), nil
}
