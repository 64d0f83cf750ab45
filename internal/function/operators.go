package function

import (
	"math"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// Operator is a binary operator of the formula language.
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
	FloorDivide
	Modulo
	Power
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	And
	Or
)

var operatorSymbols = [...]string{
	Add:          "+",
	Subtract:     "-",
	Multiply:     "*",
	Divide:       "/",
	FloorDivide:  "//",
	Modulo:       "%",
	Power:        "**",
	Equal:        "==",
	NotEqual:     "!=",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
	And:          "&",
	Or:           "|",
}

func (op Operator) String() string {
	return operatorSymbols[op]
}

// UnaryOperator is a prefix operator of the formula language.
type UnaryOperator int

const (
	Positive UnaryOperator = iota
	Negate
	Not
)

func (op UnaryOperator) String() string {
	switch op {
	case Positive:
		return "+"
	case Negate:
		return "-"
	default:
		return "~"
	}
}

// Binary applies op to l and r. The result is scalar when both operands are.
func Binary(op Operator, ctx Context, l, r Value) (Value, error) {
	switch op {
	case Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual:
		return compare(op, ctx, l, r)
	case And, Or:
		return logical(op, ctx, l, r)
	case Power:
		return power(ctx, l, r)
	case Divide:
		return divide(ctx, l, r)
	default:
		return arithmetic(op, ctx, l, r)
	}
}

// Unary applies op to v.
func Unary(op UnaryOperator, ctx Context, v Value) (Value, error) {
	dt := v.Type()
	switch op {
	case Not:
		if dt != datatype.Boolean && dt != datatype.Nothing {
			return Value{}, incompatible("~", dt)
		}
		if dt == datatype.Nothing {
			return Value{Array: array.Nulls(datatype.Boolean, v.Array.Len()), Scalar: v.Scalar}, nil
		}
		b := array.NewBuilder(datatype.Boolean, v.Array.Len())
		for i := range v.Array.Len() {
			if v.Array.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.AppendBool(!v.Array.Bool(i))
		}
		return Value{Array: b.Finish(), Scalar: v.Scalar}, nil
	case Positive:
		if !dt.IsNumeric() && dt != datatype.Nothing {
			return Value{}, incompatible("+", dt)
		}
		return v, nil
	default:
		if !dt.IsNumeric() && dt != datatype.Nothing {
			return Value{}, incompatible("-", dt)
		}
		target := dt
		if dt.IsIntegral() {
			target, _ = datatype.Promote(dt, datatype.Integer8)
		}
		cast, err := v.Array.Cast(target)
		if err != nil {
			return Value{}, err
		}
		b := array.NewBuilder(target, cast.Len())
		for i := range cast.Len() {
			switch {
			case cast.IsNull(i):
				b.AppendNull()
			case target.IsFloat():
				b.AppendFloat(-cast.Float(i))
			default:
				b.AppendInt(-cast.Int(i))
			}
		}
		return Value{Array: b.Finish(), Scalar: v.Scalar, Weak: v.Weak}, nil
	}
}

func incompatible(operation string, types ...datatype.DataType) error {
	return &errors.IncompatibleTypeError{Operation: operation, Types: types}
}

// unify finds the common type of two operands. An untyped integer literal
// takes the type of a numeric partner when it fits in it, and is otherwise
// promoted together with the partner from the narrowest integer type that
// holds it. An untyped float literal takes the type of a float partner and
// Float64 otherwise.
func unify(operation string, l, r Value) (datatype.DataType, error) {
	lt, rt := l.Type(), r.Type()
	if l.Weak != r.Weak {
		weak, strong := lt, rt
		literal := l.Array
		if r.Weak {
			weak, strong = rt, lt
			literal = r.Array
		}
		switch {
		case strong == datatype.Nothing:
			return weak, nil
		case weak.IsInteger() && strong.IsFloat():
			return strong, nil
		case weak.IsInteger() && strong.IsIntegral():
			dt, _ := datatype.Promote(strong, literalType(strong, literal))
			return dt, nil
		case weak.IsFloat() && strong.IsFloat():
			return strong, nil
		case weak.IsFloat() && strong.IsIntegral():
			return datatype.Float64, nil
		}
	}
	dt, ok := datatype.Promote(lt, rt)
	if !ok {
		return 0, incompatible(operation, lt, rt)
	}
	return dt, nil
}

// literalType returns dt if every value of the integer literal a fits in it,
// and the narrowest signed type holding them otherwise.
func literalType(dt datatype.DataType, a *array.Array) datatype.DataType {
	for _, candidate := range []datatype.DataType{dt, datatype.Integer8, datatype.Integer16, datatype.Integer32} {
		if literalFits(candidate, a) {
			return candidate
		}
	}
	return datatype.Integer64
}

func literalFits(dt datatype.DataType, a *array.Array) bool {
	for i := range a.Len() {
		if !a.IsNull(i) && !integerFits(dt, a.Int(i)) {
			return false
		}
	}
	return true
}

func integerFits(dt datatype.DataType, v int64) bool {
	switch dt {
	case datatype.Integer8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case datatype.Integer16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case datatype.Integer32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case datatype.Integer64:
		return true
	case datatype.Whole8:
		return v >= 0 && v <= math.MaxUint8
	case datatype.Whole16:
		return v >= 0 && v <= math.MaxUint16
	case datatype.Whole32:
		return v >= 0 && v <= math.MaxUint32
	case datatype.Whole64:
		return v >= 0
	}
	return false
}

// operands casts l and r to dt.
func operands(l, r Value, dt datatype.DataType) (*array.Array, *array.Array, error) {
	la, err := l.Array.Cast(dt)
	if err != nil {
		return nil, nil, err
	}
	ra, err := r.Array.Cast(dt)
	if err != nil {
		return nil, nil, err
	}
	return la, ra, nil
}

// castWeak rounds an untyped float literal compared against a Float32
// operand to Float32 precision.
func castWeak(l, r Value) (Value, Value) {
	switch {
	case l.Weak && !r.Weak && l.Type() == datatype.Float64 && r.Type() == datatype.Float32:
		if cast, err := l.Array.Cast(datatype.Float32); err == nil {
			l.Array = cast
		}
	case r.Weak && !l.Weak && r.Type() == datatype.Float64 && l.Type() == datatype.Float32:
		if cast, err := r.Array.Cast(datatype.Float32); err == nil {
			r.Array = cast
		}
	}
	return l, r
}

func result(b *array.Builder, scalar bool, l, r Value) Value {
	return Value{Array: b.Finish(), Scalar: scalar, Weak: l.Weak && r.Weak}
}

func arithmetic(op Operator, ctx Context, l, r Value) (Value, error) {
	dt, err := unify(op.String(), l, r)
	if err != nil {
		return Value{}, err
	}
	if dt == datatype.String && op == Add {
		return concatenate(ctx, l, r), nil
	}
	if !dt.IsNumeric() && dt != datatype.Nothing {
		return Value{}, incompatible(op.String(), l.Type(), r.Type())
	}

	n, scalar := ctx.shape(l, r)
	if dt == datatype.Nothing {
		return Value{Array: array.Nulls(dt, n), Scalar: scalar}, nil
	}
	la, ra, err := operands(l, r, dt)
	if err != nil {
		return Value{}, err
	}

	b := array.NewBuilder(dt, n)
	for i := range n {
		li, ri := l.index(i), r.index(i)
		if la.IsNull(li) || ra.IsNull(ri) {
			b.AppendNull()
			continue
		}
		switch {
		case dt.IsFloat():
			b.AppendFloat(floatArithmetic(op, la.Float(li), ra.Float(ri)))
		case dt.IsWhole():
			v, ok := wholeArithmetic(op, la.Uint(li), ra.Uint(ri))
			if !ok {
				b.AppendNull()
				continue
			}
			b.AppendUint(v)
		default:
			v, ok := integerArithmetic(op, la.Int(li), ra.Int(ri))
			if !ok {
				b.AppendNull()
				continue
			}
			b.AppendInt(v)
		}
	}
	return result(b, scalar, l, r), nil
}

func concatenate(ctx Context, l, r Value) Value {
	n, scalar := ctx.shape(l, r)
	b := array.NewBuilder(datatype.String, n)
	for i := range n {
		li, ri := l.index(i), r.index(i)
		if l.Array.IsNull(li) || r.Array.IsNull(ri) {
			b.AppendNull()
			continue
		}
		b.AppendString(l.Array.Str(li) + r.Array.Str(ri))
	}
	return result(b, scalar, l, r)
}

func floatArithmetic(op Operator, x, y float64) float64 {
	switch op {
	case Add:
		return x + y
	case Subtract:
		return x - y
	case Multiply:
		return x * y
	case FloorDivide:
		return math.Floor(x / y)
	default:
		return floatModulo(x, y)
	}
}

// floatModulo is the floored remainder, which takes the sign of y.
func floatModulo(x, y float64) float64 {
	r := math.Mod(x, y)
	switch {
	case r == 0:
		return math.Copysign(0, y)
	case math.Signbit(r) != math.Signbit(y):
		return r + y
	}
	return r
}

// integerArithmetic returns false when the result is undefined.
func integerArithmetic(op Operator, x, y int64) (int64, bool) {
	switch op {
	case Add:
		return x + y, true
	case Subtract:
		return x - y, true
	case Multiply:
		return x * y, true
	case FloorDivide:
		if y == 0 {
			return 0, false
		}
		q := x / y
		if x%y != 0 && (x < 0) != (y < 0) {
			q--
		}
		return q, true
	default:
		if y == 0 {
			return 0, false
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m, true
	}
}

func wholeArithmetic(op Operator, x, y uint64) (uint64, bool) {
	switch op {
	case Add:
		return x + y, true
	case Subtract:
		return x - y, true
	case Multiply:
		return x * y, true
	case FloorDivide:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	default:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	}
}

// divide is true division, which always produces Float64.
func divide(ctx Context, l, r Value) (Value, error) {
	lt, rt := l.Type(), r.Type()
	for _, dt := range []datatype.DataType{lt, rt} {
		if !dt.IsNumeric() && dt != datatype.Nothing {
			return Value{}, incompatible("/", lt, rt)
		}
	}
	n, scalar := ctx.shape(l, r)
	b := array.NewBuilder(datatype.Float64, n)
	for i := range n {
		li, ri := l.index(i), r.index(i)
		if l.Array.IsNull(li) || r.Array.IsNull(ri) {
			b.AppendNull()
			continue
		}
		b.AppendFloat(l.Array.Float(li) / r.Array.Float(ri))
	}
	return Value{Array: b.Finish(), Scalar: scalar}, nil
}

// powerType decides the result type of base ** exponent. Integral operands
// stay integral when the exponent cannot be negative: a Whole exponent or a
// non-negative integer literal. A signed integer exponent gives Float64.
func powerType(base, exponent Value) (datatype.DataType, error) {
	bt, et := base.Type(), exponent.Type()
	if (!bt.IsNumeric() && bt != datatype.Nothing) || (!et.IsNumeric() && et != datatype.Nothing) {
		return 0, incompatible("**", bt, et)
	}
	if bt == datatype.Nothing || et == datatype.Nothing {
		return unify("**", base, exponent)
	}
	if bt.IsFloat() || et.IsFloat() {
		return unify("**", base, exponent)
	}

	integral := bt
	if base.Weak && !exponent.Weak {
		integral = datatype.Integer64
	}
	switch {
	case et.IsWhole():
		return integral, nil
	case exponent.Weak && nonNegative(exponent.Array):
		return integral, nil
	default:
		return datatype.Float64, nil
	}
}

func nonNegative(a *array.Array) bool {
	for i := range a.Len() {
		if !a.IsNull(i) && a.Int(i) < 0 {
			return false
		}
	}
	return true
}

func power(ctx Context, base, exponent Value) (Value, error) {
	dt, err := powerType(base, exponent)
	if err != nil {
		return Value{}, err
	}
	n, scalar := ctx.shape(base, exponent)
	if dt == datatype.Nothing {
		return Value{Array: array.Nulls(dt, n), Scalar: scalar}, nil
	}

	b := array.NewBuilder(dt, n)
	for i := range n {
		bi, ei := base.index(i), exponent.index(i)
		if base.Array.IsNull(bi) || exponent.Array.IsNull(ei) {
			b.AppendNull()
			continue
		}
		switch {
		case dt.IsFloat():
			b.AppendFloat(math.Pow(base.Array.Float(bi), exponent.Array.Float(ei)))
		case dt.IsWhole():
			b.AppendUint(integerPower(base.Array.Uint(bi), exponent.Array.Uint(ei)))
		default:
			b.AppendInt(integerPower(base.Array.Int(bi), uint64(exponent.Array.Int(ei))))
		}
	}
	return result(b, scalar, base, exponent), nil
}

// integerPower raises x to e by repeated squaring with wrapping overflow.
func integerPower[T int64 | uint64](x T, e uint64) T {
	var acc T = 1
	for e > 0 {
		if e&1 == 1 {
			acc *= x
		}
		x *= x
		e >>= 1
	}
	return acc
}

func orderable(l, r datatype.DataType) bool {
	switch {
	case l == datatype.Nothing || r == datatype.Nothing:
		return true
	case l.IsNumeric() && r.IsNumeric():
		return true
	default:
		return l == r
	}
}

func compare(op Operator, ctx Context, l, r Value) (Value, error) {
	if !orderable(l.Type(), r.Type()) {
		return Value{}, incompatible(op.String(), l.Type(), r.Type())
	}
	l, r = castWeak(l, r)
	n, scalar := ctx.shape(l, r)
	b := array.NewBuilder(datatype.Boolean, n)
	for i := range n {
		li, ri := l.index(i), r.index(i)
		switch op {
		case Equal:
			b.AppendBool(array.ElementsEqual(l.Array, li, r.Array, ri))
			continue
		case NotEqual:
			b.AppendBool(!array.ElementsEqual(l.Array, li, r.Array, ri))
			continue
		}
		if l.Array.IsNull(li) || r.Array.IsNull(ri) {
			b.AppendNull()
			continue
		}
		c := array.Compare(l.Array, li, r.Array, ri)
		switch op {
		case Less:
			b.AppendBool(c < 0)
		case LessEqual:
			b.AppendBool(c <= 0)
		case Greater:
			b.AppendBool(c > 0)
		default:
			b.AppendBool(c >= 0)
		}
	}
	return Value{Array: b.Finish(), Scalar: scalar}, nil
}

// logical applies three-valued and/or: false & null is false and
// true | null is true; other combinations with null are null.
func logical(op Operator, ctx Context, l, r Value) (Value, error) {
	for _, dt := range []datatype.DataType{l.Type(), r.Type()} {
		if dt != datatype.Boolean && dt != datatype.Nothing {
			return Value{}, incompatible(op.String(), l.Type(), r.Type())
		}
	}
	n, scalar := ctx.shape(l, r)
	b := array.NewBuilder(datatype.Boolean, n)
	for i := range n {
		lv, lok := truth(l.Array, l.index(i))
		rv, rok := truth(r.Array, r.index(i))
		switch {
		case op == And && ((lok && !lv) || (rok && !rv)):
			b.AppendBool(false)
		case op == Or && ((lok && lv) || (rok && rv)):
			b.AppendBool(true)
		case !lok || !rok:
			b.AppendNull()
		case op == And:
			b.AppendBool(lv && rv)
		default:
			b.AppendBool(lv || rv)
		}
	}
	return Value{Array: b.Finish(), Scalar: scalar}, nil
}

func truth(a *array.Array, i int) (value, ok bool) {
	if a.IsNull(i) {
		return false, false
	}
	return a.Bool(i), true
}
