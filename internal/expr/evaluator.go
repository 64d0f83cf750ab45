package expr

import (
	"fmt"

	"github.com/paveg/tabeline/internal/array"
	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
	"github.com/paveg/tabeline/internal/function"
)

// Source supplies the columns an expression reads.
type Source interface {
	Column(name string) (*array.Array, error)
}

var binaryOperators = map[BinaryOp]function.Operator{
	OpAdd:      function.Add,
	OpSub:      function.Subtract,
	OpMul:      function.Multiply,
	OpDiv:      function.Divide,
	OpFloorDiv: function.FloorDivide,
	OpMod:      function.Modulo,
	OpPow:      function.Power,
	OpEq:       function.Equal,
	OpNe:       function.NotEqual,
	OpLt:       function.Less,
	OpLe:       function.LessEqual,
	OpGt:       function.Greater,
	OpGe:       function.GreaterEqual,
	OpAnd:      function.And,
	OpOr:       function.Or,
}

var unaryOperators = map[UnaryOp]function.UnaryOperator{
	UnaryPos: function.Positive,
	UnaryNeg: function.Negate,
	UnaryNot: function.Not,
}

// Window evaluates e once per group and scatters each group's result back to
// the group's rows. Scalar results broadcast across the group. groups lists
// row positions; together they must cover [0, height). When there are no
// groups the result type comes from evaluating e over an empty group.
func Window(e Expr, src Source, height int, groups [][]int) (*array.Array, error) {
	if len(groups) == 0 {
		return array.Nulls(EmptyType(e, src), height), nil
	}

	parts := make([]*array.Array, len(groups))
	for g, rows := range groups {
		v, err := evaluateGroup(e, src, rows)
		if err != nil {
			return nil, err
		}
		if v.Scalar {
			parts[g] = v.Broadcast(len(rows))
			continue
		}
		if v.Array.Len() != len(rows) {
			return nil, &errors.IncompatibleLengthError{Expected: len(rows), Actual: v.Array.Len(), Column: e.String()}
		}
		parts[g] = v.Array
	}

	combined, err := array.Concat(parts...)
	if err != nil {
		return nil, err
	}
	positions := make([]int, height)
	for i := range positions {
		positions[i] = -1
	}
	offset := 0
	for _, rows := range groups {
		for k, row := range rows {
			positions[row] = offset + k
		}
		offset += len(rows)
	}
	return combined.Take(positions), nil
}

// Aggregate evaluates e once per group and returns one element per group.
// A result that is not a single value fails with IncompatibleLengthError.
func Aggregate(e Expr, src Source, groups [][]int) (*array.Array, error) {
	if len(groups) == 0 {
		return array.Nulls(EmptyType(e, src), 0), nil
	}

	parts := make([]*array.Array, len(groups))
	for g, rows := range groups {
		v, err := evaluateGroup(e, src, rows)
		if err != nil {
			return nil, err
		}
		if v.Array.Len() != 1 {
			return nil, &errors.IncompatibleLengthError{Expected: 1, Actual: v.Array.Len(), Column: e.String()}
		}
		parts[g] = v.Array
	}
	return array.Concat(parts...)
}

// EmptyType is the type e produces over a group without rows, or Nothing
// when that evaluation fails.
func EmptyType(e Expr, src Source) datatype.DataType {
	v, err := evaluateGroup(e, src, nil)
	if err != nil {
		return datatype.Nothing
	}
	return v.Type()
}

func evaluateGroup(e Expr, src Source, rows []int) (function.Value, error) {
	ev := &evaluator{
		src:     src,
		rows:    rows,
		ctx:     function.Context{Size: len(rows)},
		columns: make(map[string]*array.Array),
	}
	return ev.eval(e)
}

// evaluator holds the state of one group's evaluation.
type evaluator struct {
	src     Source
	rows    []int
	ctx     function.Context
	columns map[string]*array.Array
}

func (ev *evaluator) eval(e Expr) (function.Value, error) {
	switch x := e.(type) {
	case *ColumnExpr:
		return ev.column(x.name)
	case *LiteralExpr:
		return literal(x)
	case *UnaryExpr:
		operand, err := ev.eval(x.operand)
		if err != nil {
			return function.Value{}, err
		}
		return function.Unary(unaryOperators[x.op], ev.ctx, operand)
	case *BinaryExpr:
		left, err := ev.eval(x.left)
		if err != nil {
			return function.Value{}, err
		}
		right, err := ev.eval(x.right)
		if err != nil {
			return function.Value{}, err
		}
		return function.Binary(binaryOperators[x.op], ev.ctx, left, right)
	case *FunctionExpr:
		def, err := function.Lookup(x.name)
		if err != nil {
			return function.Value{}, err
		}
		args := make([]function.Value, len(x.args))
		for i, arg := range x.args {
			if args[i], err = ev.eval(arg); err != nil {
				return function.Value{}, err
			}
		}
		return def.Call(ev.ctx, args)
	}
	return function.Value{}, fmt.Errorf("unknown expression node %T", e)
}

func (ev *evaluator) column(name string) (function.Value, error) {
	if a, ok := ev.columns[name]; ok {
		return function.ColumnOf(a), nil
	}
	full, err := ev.src.Column(name)
	if err != nil {
		return function.Value{}, err
	}
	a := full.Take(ev.rows)
	ev.columns[name] = a
	return function.ColumnOf(a), nil
}

// literal builds a scalar. Numeric literals are weak.
func literal(l *LiteralExpr) (function.Value, error) {
	if l.kind == NullLiteral {
		return function.NullScalar(datatype.Nothing), nil
	}
	a, err := array.FromSequence([]any{l.value})
	if err != nil {
		return function.Value{}, err
	}
	weak := l.kind == IntegerLiteral || l.kind == FloatLiteral
	return function.Value{Array: a, Scalar: true, Weak: weak}, nil
}
