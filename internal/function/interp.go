package function

import (
	"fmt"
	"math"
	"sort"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// abscissa validates a sample grid: numeric, without nulls, and weakly
// increasing.
func abscissa(name, arg string, a *array.Array) ([]float64, error) {
	if !a.DataType().IsNumeric() {
		return nil, incompatible(name, a.DataType())
	}
	ts := make([]float64, a.Len())
	for i := range ts {
		if a.IsNull(i) {
			return nil, &errors.InvalidArgumentError{
				Function: name,
				Message:  fmt.Sprintf("expected %s to not contain null values, but element %d is null", arg, i),
			}
		}
		ts[i] = a.Float(i)
		if i > 0 && ts[i] < ts[i-1] {
			return nil, &errors.InvalidArgumentError{
				Function: name,
				Message:  fmt.Sprintf("expected %s to be monotonically increasing, but it decreases at element %d", arg, i),
			}
		}
	}
	return ts, nil
}

// interp linearly interpolates ys over ts at each t. Points outside the
// range of ts give null.
func interp(ctx Context, args []Value) (Value, error) {
	t, tsValue, ysValue := args[0], args[1], args[2]
	if !t.Type().IsNumeric() {
		return Value{}, incompatible("interp", t.Type())
	}
	if !ysValue.Type().IsNumeric() {
		return Value{}, incompatible("interp", ysValue.Type())
	}
	tsArray, ys := tsValue.Broadcast(ctx.Size), ysValue.Broadcast(ctx.Size)
	if tsArray.Len() != ys.Len() {
		return Value{}, &errors.InvalidArgumentError{
			Function: "interp",
			Message:  fmt.Sprintf("expected ts and ys to have the same length, but they have lengths %d and %d", tsArray.Len(), ys.Len()),
		}
	}
	if tsArray.Len() == 0 {
		return Value{}, &errors.InvalidArgumentError{Function: "interp", Message: "expected ts and ys to be non-empty"}
	}
	ts, err := abscissa("interp", "ts", tsArray)
	if err != nil {
		return Value{}, err
	}

	b := array.NewBuilder(datatype.Float64, t.Array.Len())
	for i := range t.Array.Len() {
		if t.Array.IsNull(i) {
			b.AppendNull()
			continue
		}
		x := t.Array.Float(i)
		if math.IsNaN(x) {
			b.AppendFloat(x)
			continue
		}
		j := sort.SearchFloat64s(ts, x)
		switch {
		case j < len(ts) && ts[j] == x:
			if ys.IsNull(j) {
				b.AppendNull()
			} else {
				b.AppendFloat(ys.Float(j))
			}
		case j == 0 || j == len(ts):
			b.AppendNull()
		case ys.IsNull(j-1) || ys.IsNull(j):
			b.AppendNull()
		default:
			t0, t1 := ts[j-1], ts[j]
			y0, y1 := ys.Float(j-1), ys.Float(j)
			b.AppendFloat(y0 + (y1-y0)/(t1-t0)*(x-t0))
		}
	}
	return Value{Array: b.Finish(), Scalar: t.Scalar}, nil
}

// trapz integrates y over t with the trapezoidal rule.
func trapz(ctx Context, args []Value) (Value, error) {
	tArray, y := args[0].Broadcast(ctx.Size), args[1].Broadcast(ctx.Size)
	if !y.DataType().IsNumeric() {
		return Value{}, incompatible("trapz", y.DataType())
	}
	if tArray.Len() != y.Len() {
		return Value{}, &errors.InvalidArgumentError{
			Function: "trapz",
			Message:  fmt.Sprintf("expected t and y to have the same length, but they have lengths %d and %d", tArray.Len(), y.Len()),
		}
	}
	ts, err := abscissa("trapz", "t", tArray)
	if err != nil {
		return Value{}, err
	}
	if y.NullCount() > 0 {
		return NullScalar(datatype.Float64), nil
	}
	total := 0.0
	for i := 1; i < len(ts); i++ {
		total += (ts[i] - ts[i-1]) * (y.Float(i-1) + y.Float(i))
	}
	return floatScalar(datatype.Float64, 0.5*total), nil
}
