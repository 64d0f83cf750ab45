// Package function holds the built-in functions and operator kernels of the
// formula language. Every function works on the rows of one group at a time;
// the evaluator decides how groups are formed and how results are spread back.
package function

import (
	"sort"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// Kind classifies how a function relates input rows to output rows.
type Kind int

const (
	// Elementwise functions produce one output per input row.
	Elementwise Kind = iota
	// Reduction functions produce one output per group.
	Reduction
	// Constant functions take no arguments and depend only on the group.
	Constant
)

func (k Kind) String() string {
	switch k {
	case Elementwise:
		return "elementwise"
	case Reduction:
		return "reduction"
	default:
		return "constant"
	}
}

// Value is an evaluated operand. A scalar Value holds a single element that
// stands for every row of the group; otherwise Array has one element per row.
// Weak marks untyped numeric literals, which adopt the type of the other
// operand in arithmetic.
type Value struct {
	Array  *array.Array
	Scalar bool
	Weak   bool
}

// ScalarOf wraps a one-element array as a scalar Value.
func ScalarOf(a *array.Array) Value {
	return Value{Array: a, Scalar: true}
}

// ColumnOf wraps a per-row array.
func ColumnOf(a *array.Array) Value {
	return Value{Array: a}
}

// NullScalar is a scalar null of type dt.
func NullScalar(dt datatype.DataType) Value {
	return ScalarOf(array.Nulls(dt, 1))
}

// Type returns the element type of the value.
func (v Value) Type() datatype.DataType {
	return v.Array.DataType()
}

// index maps row i of the group onto an element of v.
func (v Value) index(i int) int {
	if v.Scalar {
		return 0
	}
	return i
}

// Broadcast expands v to size rows.
func (v Value) Broadcast(size int) *array.Array {
	if !v.Scalar {
		return v.Array
	}
	indexes := make([]int, size)
	return v.Array.Take(indexes)
}

// Context describes the group a function is evaluated over.
type Context struct {
	// Size is the number of rows in the group.
	Size int
}

// shape returns the number of output elements for an elementwise operation
// over args and whether the result is scalar.
func (c Context) shape(args ...Value) (int, bool) {
	for _, arg := range args {
		if !arg.Scalar {
			return c.Size, false
		}
	}
	return 1, true
}

// Definition describes one registered function.
type Definition struct {
	Name    string
	Kind    Kind
	MinArgs int
	MaxArgs int // -1 for variadic

	// nothingIn reports whether a Nothing argument short-circuits to a
	// Nothing result.
	nothingIn bool
	call      func(ctx Context, args []Value) (Value, error)
}

// Call validates the argument count and applies the function.
func (d Definition) Call(ctx Context, args []Value) (Value, error) {
	if len(args) < d.MinArgs || (d.MaxArgs >= 0 && len(args) > d.MaxArgs) {
		return Value{}, &errors.ArityError{Name: d.Name, Min: d.MinArgs, Max: d.MaxArgs, Actual: len(args)}
	}
	if d.nothingIn {
		for _, arg := range args {
			if arg.Type() == datatype.Nothing {
				return d.nothing(ctx, args), nil
			}
		}
	}
	return d.call(ctx, args)
}

func (d Definition) nothing(ctx Context, args []Value) Value {
	if d.Kind == Reduction {
		return NullScalar(datatype.Nothing)
	}
	n, scalar := ctx.shape(args...)
	return Value{Array: array.Nulls(datatype.Nothing, n), Scalar: scalar}
}

// Lookup returns the definition of a function by name.
func Lookup(name string) (Definition, error) {
	d, ok := registry[name]
	if !ok {
		return Definition{}, &errors.UnknownFunctionError{Name: name}
	}
	return d, nil
}

// Names lists every registered function in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func def(name string, kind Kind, minArgs, maxArgs int, nothingIn bool, call func(Context, []Value) (Value, error)) Definition {
	return Definition{Name: name, Kind: kind, MinArgs: minArgs, MaxArgs: maxArgs, nothingIn: nothingIn, call: call}
}

var registry = map[string]Definition{
	"n":          def("n", Constant, 0, 0, false, count),
	"row_index0": def("row_index0", Constant, 0, 0, false, rowIndex(0)),
	"row_index1": def("row_index1", Constant, 0, 0, false, rowIndex(1)),

	"abs":       def("abs", Elementwise, 1, 1, true, absolute),
	"sqrt":      def("sqrt", Elementwise, 1, 1, true, floatUnary("sqrt", sqrt)),
	"log":       def("log", Elementwise, 1, 1, true, floatUnary("log", log)),
	"log2":      def("log2", Elementwise, 1, 1, true, floatUnary("log2", log2)),
	"log10":     def("log10", Elementwise, 1, 1, true, floatUnary("log10", log10)),
	"exp":       def("exp", Elementwise, 1, 1, true, floatUnary("exp", exp)),
	"sin":       def("sin", Elementwise, 1, 1, true, floatUnary("sin", sin)),
	"cos":       def("cos", Elementwise, 1, 1, true, floatUnary("cos", cos)),
	"tan":       def("tan", Elementwise, 1, 1, true, floatUnary("tan", tan)),
	"arcsin":    def("arcsin", Elementwise, 1, 1, true, floatUnary("arcsin", asin)),
	"arccos":    def("arccos", Elementwise, 1, 1, true, floatUnary("arccos", acos)),
	"arctan":    def("arctan", Elementwise, 1, 1, true, floatUnary("arctan", atan)),
	"floor":     def("floor", Elementwise, 1, 1, true, rounding("floor", floor)),
	"ceil":      def("ceil", Elementwise, 1, 1, true, rounding("ceil", ceil)),
	"pow":       def("pow", Elementwise, 2, 2, true, powFunction),
	"is_null":   def("is_null", Elementwise, 1, 1, false, isNull),
	"is_nan":    def("is_nan", Elementwise, 1, 1, true, isNaN),
	"is_finite": def("is_finite", Elementwise, 1, 1, true, isFinite),

	"to_boolean": def("to_boolean", Elementwise, 1, 1, true, castTo(datatype.Boolean)),
	"to_integer": def("to_integer", Elementwise, 1, 1, true, castTo(datatype.Integer64)),
	"to_float":   def("to_float", Elementwise, 1, 1, true, castTo(datatype.Float64)),
	"to_string":  def("to_string", Elementwise, 1, 1, true, castTo(datatype.String)),

	"if_else": def("if_else", Elementwise, 2, 3, false, ifElse),
	"pmax":    def("pmax", Elementwise, 1, -1, false, extremum("pmax", 1)),
	"pmin":    def("pmin", Elementwise, 1, -1, false, extremum("pmin", -1)),

	"std":      def("std", Reduction, 1, 1, true, standardDeviation),
	"var":      def("var", Reduction, 1, 1, true, variance),
	"max":      def("max", Reduction, 1, 1, true, maximum),
	"min":      def("min", Reduction, 1, 1, true, minimum),
	"sum":      def("sum", Reduction, 1, 1, true, sum),
	"mean":     def("mean", Reduction, 1, 1, true, mean),
	"median":   def("median", Reduction, 1, 1, true, median),
	"quantile": def("quantile", Reduction, 2, 2, true, quantile),
	"trapz":    def("trapz", Reduction, 2, 2, true, trapz),
	"interp":   def("interp", Reduction, 3, 3, true, interp),
	"any":      def("any", Reduction, 1, 1, true, anyTrue),
	"all":      def("all", Reduction, 1, 1, true, allTrue),
	"first":    def("first", Reduction, 1, 1, true, first),
	"last":     def("last", Reduction, 1, 1, true, last),
	"same":     def("same", Reduction, 1, 1, false, same),
}
