package function

import (
	"math"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

var (
	sqrt  = math.Sqrt
	log   = math.Log
	log2  = math.Log2
	log10 = math.Log10
	exp   = math.Exp
	sin   = math.Sin
	cos   = math.Cos
	tan   = math.Tan
	asin  = math.Asin
	acos  = math.Acos
	atan  = math.Atan
	floor = math.Floor
	ceil  = math.Ceil
)

func count(ctx Context, _ []Value) (Value, error) {
	b := array.NewBuilder(datatype.Integer64, 1)
	b.AppendInt(int64(ctx.Size))
	return ScalarOf(b.Finish()), nil
}

func rowIndex(offset int64) func(Context, []Value) (Value, error) {
	return func(ctx Context, _ []Value) (Value, error) {
		b := array.NewBuilder(datatype.Integer64, ctx.Size)
		for i := range ctx.Size {
			b.AppendInt(int64(i) + offset)
		}
		return ColumnOf(b.Finish()), nil
	}
}

// mapElements applies fn to each non-null element of v, building an array
// of type dt with v's shape.
func mapElements(v Value, dt datatype.DataType, fn func(b *array.Builder, a *array.Array, i int)) Value {
	b := array.NewBuilder(dt, v.Array.Len())
	for i := range v.Array.Len() {
		if v.Array.IsNull(i) {
			b.AppendNull()
			continue
		}
		fn(b, v.Array, i)
	}
	return Value{Array: b.Finish(), Scalar: v.Scalar, Weak: v.Weak && dt == v.Type()}
}

func requireNumeric(name string, v Value) error {
	if !v.Type().IsNumeric() {
		return incompatible(name, v.Type())
	}
	return nil
}

func absolute(_ Context, args []Value) (Value, error) {
	v := args[0]
	if err := requireNumeric("abs", v); err != nil {
		return Value{}, err
	}
	dt := v.Type()
	return mapElements(v, dt, func(b *array.Builder, a *array.Array, i int) {
		switch {
		case dt.IsFloat():
			b.AppendFloat(math.Abs(a.Float(i)))
		case dt.IsWhole():
			b.AppendUint(a.Uint(i))
		default:
			x := a.Int(i)
			if x < 0 {
				x = -x
			}
			b.AppendInt(x)
		}
	}), nil
}

// floatUnary lifts a float64 function to arrays. Float32 input stays Float32;
// every other numeric type produces Float64.
func floatUnary(name string, fn func(float64) float64) func(Context, []Value) (Value, error) {
	return func(_ Context, args []Value) (Value, error) {
		v := args[0]
		if err := requireNumeric(name, v); err != nil {
			return Value{}, err
		}
		dt := datatype.Float64
		if v.Type() == datatype.Float32 {
			dt = datatype.Float32
		}
		return mapElements(v, dt, func(b *array.Builder, a *array.Array, i int) {
			b.AppendFloat(fn(a.Float(i)))
		}), nil
	}
}

// rounding leaves integral input untouched.
func rounding(name string, fn func(float64) float64) func(Context, []Value) (Value, error) {
	return func(_ Context, args []Value) (Value, error) {
		v := args[0]
		if err := requireNumeric(name, v); err != nil {
			return Value{}, err
		}
		if v.Type().IsIntegral() {
			return v, nil
		}
		return mapElements(v, v.Type(), func(b *array.Builder, a *array.Array, i int) {
			b.AppendFloat(fn(a.Float(i)))
		}), nil
	}
}

func powFunction(ctx Context, args []Value) (Value, error) {
	return power(ctx, args[0], args[1])
}

func isNull(_ Context, args []Value) (Value, error) {
	v := args[0]
	b := array.NewBuilder(datatype.Boolean, v.Array.Len())
	for i := range v.Array.Len() {
		b.AppendBool(v.Array.IsNull(i))
	}
	return Value{Array: b.Finish(), Scalar: v.Scalar}, nil
}

func isNaN(_ Context, args []Value) (Value, error) {
	v := args[0]
	if err := requireNumeric("is_nan", v); err != nil {
		return Value{}, err
	}
	return mapElements(v, datatype.Boolean, func(b *array.Builder, a *array.Array, i int) {
		b.AppendBool(a.DataType().IsFloat() && math.IsNaN(a.Float(i)))
	}), nil
}

func isFinite(_ Context, args []Value) (Value, error) {
	v := args[0]
	if err := requireNumeric("is_finite", v); err != nil {
		return Value{}, err
	}
	return mapElements(v, datatype.Boolean, func(b *array.Builder, a *array.Array, i int) {
		if !a.DataType().IsFloat() {
			b.AppendBool(true)
			return
		}
		f := a.Float(i)
		b.AppendBool(!math.IsNaN(f) && !math.IsInf(f, 0))
	}), nil
}

func castTo(dt datatype.DataType) func(Context, []Value) (Value, error) {
	return func(_ Context, args []Value) (Value, error) {
		v := args[0]
		cast, err := v.Array.Cast(dt)
		if err != nil {
			return Value{}, err
		}
		return Value{Array: cast, Scalar: v.Scalar}, nil
	}
}

// ifElse picks from then or otherwise by condition. A null condition gives
// null. The branches are unified like arithmetic operands.
func ifElse(ctx Context, args []Value) (Value, error) {
	condition, then := args[0], args[1]
	otherwise := NullScalar(datatype.Nothing)
	if len(args) == 3 {
		otherwise = args[2]
	}
	if ct := condition.Type(); ct != datatype.Boolean && ct != datatype.Nothing {
		return Value{}, &errors.InvalidArgumentError{
			Function: "if_else",
			Message:  "condition must be Boolean, but it is " + ct.String(),
		}
	}

	dt, err := unify("if_else", then, otherwise)
	if err != nil {
		return Value{}, err
	}
	thenArray, otherwiseArray, err := operands(then, otherwise, dt)
	if err != nil {
		return Value{}, err
	}

	n, scalar := ctx.shape(condition, then, otherwise)
	b := array.NewBuilder(dt, n)
	for i := range n {
		ci := condition.index(i)
		switch {
		case condition.Array.IsNull(ci):
			b.AppendNull()
		case condition.Array.Bool(ci):
			b.AppendFrom(thenArray, then.index(i))
		default:
			b.AppendFrom(otherwiseArray, otherwise.index(i))
		}
	}
	return Value{Array: b.Finish(), Scalar: scalar, Weak: then.Weak && otherwise.Weak}, nil
}

// extremum builds pmax (sign 1) and pmin (sign -1). A null in any argument
// gives null; NaN orders above every number.
func extremum(name string, sign int) func(Context, []Value) (Value, error) {
	return func(ctx Context, args []Value) (Value, error) {
		dt := args[0].Type()
		weak := args[0].Weak
		literals := args[0].Array
		for _, arg := range args[1:] {
			seen := array.Nulls(dt, 0)
			if weak {
				seen = literals
			}
			next, err := unify(name, Value{Array: seen, Weak: weak}, arg)
			if err != nil {
				return Value{}, err
			}
			if weak && arg.Weak {
				if literals, err = array.Concat(literals, arg.Array); err != nil {
					return Value{}, err
				}
			}
			dt, weak = next, weak && arg.Weak
		}
		if dt == datatype.String || dt == datatype.Boolean {
			return Value{}, incompatible(name, dt)
		}

		cast := make([]*array.Array, len(args))
		for i, arg := range args {
			a, err := arg.Array.Cast(dt)
			if err != nil {
				return Value{}, err
			}
			cast[i] = a
		}

		n, scalar := ctx.shape(args...)
		b := array.NewBuilder(dt, n)
		for i := range n {
			best, bestIndex := -1, 0
			null := false
			for k, arg := range args {
				j := arg.index(i)
				if cast[k].IsNull(j) {
					null = true
					break
				}
				if best < 0 || sign*array.Compare(cast[k], j, cast[best], bestIndex) > 0 {
					best, bestIndex = k, j
				}
			}
			if null {
				b.AppendNull()
				continue
			}
			b.AppendFrom(cast[best], bestIndex)
		}
		return Value{Array: b.Finish(), Scalar: scalar, Weak: weak}, nil
	}
}
