// Package expr provides the formula language: an immutable expression tree,
// a parser from source text, and an evaluator over grouped columns.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paveg/tabeline/internal/array"
)

// ExprType represents the type of expression
type ExprType int

const (
	ExprColumn ExprType = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprFunction
)

// Expr is a node of the expression tree. The set of node types is closed:
// ColumnExpr, LiteralExpr, UnaryExpr, BinaryExpr, and FunctionExpr.
type Expr interface {
	Type() ExprType
	// String renders the node as source that parses back to an equal tree.
	String() string
	sealed()
}

// ColumnExpr references a column by name.
type ColumnExpr struct {
	name string
}

func (c *ColumnExpr) Type() ExprType { return ExprColumn }
func (c *ColumnExpr) String() string { return c.name }
func (c *ColumnExpr) Name() string   { return c.name }
func (c *ColumnExpr) sealed()        {}

// LiteralKind distinguishes the literal variants.
type LiteralKind int

const (
	NullLiteral LiteralKind = iota
	BooleanLiteral
	IntegerLiteral
	FloatLiteral
	StringLiteral
)

// LiteralExpr is a constant. Its value is nil, bool, int64, float64, or
// string according to its kind.
type LiteralExpr struct {
	kind  LiteralKind
	value any
}

func (l *LiteralExpr) Type() ExprType    { return ExprLiteral }
func (l *LiteralExpr) Kind() LiteralKind { return l.kind }
func (l *LiteralExpr) Value() any        { return l.value }
func (l *LiteralExpr) sealed()           {}

func (l *LiteralExpr) String() string {
	switch l.kind {
	case BooleanLiteral:
		if l.value.(bool) {
			return "True"
		}
		return "False"
	case IntegerLiteral:
		v := l.value.(int64)
		if v < 0 {
			return "(-" + strconv.FormatUint(uint64(-v), 10) + ")"
		}
		return strconv.FormatInt(v, 10)
	case FloatLiteral:
		v := l.value.(float64)
		if v < 0 || (v == 0 && math.Signbit(v)) {
			return "(-" + array.FormatFloat(-v, 64) + ")"
		}
		return array.FormatFloat(v, 64)
	case StringLiteral:
		return "'" + l.value.(string) + "'"
	default:
		return "None"
	}
}

// UnaryOp represents unary operations
type UnaryOp int

const (
	UnaryPos UnaryOp = iota
	UnaryNeg
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryPos:
		return "+"
	case UnaryNeg:
		return "-"
	default:
		return "~"
	}
}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
}

func (u *UnaryExpr) Type() ExprType { return ExprUnary }
func (u *UnaryExpr) Op() UnaryOp    { return u.op }
func (u *UnaryExpr) Operand() Expr  { return u.operand }
func (u *UnaryExpr) sealed()        {}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.op, u.operand)
}

// BinaryOp represents binary operations
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binarySymbols = map[BinaryOp]string{
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpFloorDiv: "//",
	OpMod:      "%",
	OpPow:      "**",
	OpEq:       "==",
	OpNe:       "!=",
	OpLt:       "<",
	OpLe:       "<=",
	OpGt:       ">",
	OpGe:       ">=",
	OpAnd:      "&",
	OpOr:       "|",
}

func (op BinaryOp) String() string {
	return binarySymbols[op]
}

// IsComparison reports whether op is one of the six comparisons.
func (op BinaryOp) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Type() ExprType { return ExprBinary }
func (b *BinaryExpr) Left() Expr     { return b.left }
func (b *BinaryExpr) Op() BinaryOp   { return b.op }
func (b *BinaryExpr) Right() Expr    { return b.right }
func (b *BinaryExpr) sealed()        {}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

// FunctionExpr calls a registered function.
type FunctionExpr struct {
	name string
	args []Expr
}

func (f *FunctionExpr) Type() ExprType { return ExprFunction }
func (f *FunctionExpr) Name() string   { return f.name }
func (f *FunctionExpr) Args() []Expr   { return f.args }
func (f *FunctionExpr) sealed()        {}

func (f *FunctionExpr) String() string {
	args := make([]string, len(f.args))
	for i, arg := range f.args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", f.name, strings.Join(args, ", "))
}

// Constructor functions

// Col creates a column expression
func Col(name string) *ColumnExpr {
	return &ColumnExpr{name: name}
}

// Null creates the None literal.
func Null() *LiteralExpr {
	return &LiteralExpr{kind: NullLiteral}
}

// Lit creates a literal from a Go value. Integers become int64 and floats
// become float64; any other type panics.
func Lit(value any) *LiteralExpr {
	switch v := value.(type) {
	case nil:
		return Null()
	case bool:
		return &LiteralExpr{kind: BooleanLiteral, value: v}
	case int:
		return &LiteralExpr{kind: IntegerLiteral, value: int64(v)}
	case int64:
		return &LiteralExpr{kind: IntegerLiteral, value: v}
	case float64:
		return &LiteralExpr{kind: FloatLiteral, value: v}
	case string:
		return &LiteralExpr{kind: StringLiteral, value: v}
	default:
		panic(fmt.Sprintf("unsupported literal type %T", value))
	}
}

// Unary creates a unary expression.
func Unary(op UnaryOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{op: op, operand: operand}
}

// Binary creates a binary expression.
func Binary(left Expr, op BinaryOp, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: op, right: right}
}

// Call creates a function call expression.
func Call(name string, args ...Expr) *FunctionExpr {
	return &FunctionExpr{name: name, args: args}
}

// Equal reports whether two trees are structurally identical. Float
// literals compare by bits so that nan equals nan.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *ColumnExpr:
		y, ok := b.(*ColumnExpr)
		return ok && x.name == y.name
	case *LiteralExpr:
		y, ok := b.(*LiteralExpr)
		if !ok || x.kind != y.kind {
			return false
		}
		if x.kind == FloatLiteral {
			return math.Float64bits(x.value.(float64)) == math.Float64bits(y.value.(float64))
		}
		return x.value == y.value
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.op == y.op && Equal(x.operand, y.operand)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.op == y.op && Equal(x.left, y.left) && Equal(x.right, y.right)
	case *FunctionExpr:
		y, ok := b.(*FunctionExpr)
		if !ok || x.name != y.name || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equal(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Substitute returns a copy of e with every column reference named in subs
// replaced by its substitution. Substitutions are not themselves rewritten.
func Substitute(e Expr, subs map[string]Expr) Expr {
	switch x := e.(type) {
	case *ColumnExpr:
		if replacement, ok := subs[x.name]; ok {
			return replacement
		}
		return x
	case *LiteralExpr:
		return x
	case *UnaryExpr:
		return Unary(x.op, Substitute(x.operand, subs))
	case *BinaryExpr:
		return Binary(Substitute(x.left, subs), x.op, Substitute(x.right, subs))
	case *FunctionExpr:
		args := make([]Expr, len(x.args))
		for i, arg := range x.args {
			args[i] = Substitute(arg, subs)
		}
		return Call(x.name, args...)
	}
	panic(fmt.Sprintf("unknown expression node %T", e))
}

// Columns lists the column names e references, in first-reference order.
func Columns(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case *ColumnExpr:
			if !seen[x.name] {
				seen[x.name] = true
				names = append(names, x.name)
			}
		case *UnaryExpr:
			walk(x.operand)
		case *BinaryExpr:
			walk(x.left)
			walk(x.right)
		case *FunctionExpr:
			for _, arg := range x.args {
				walk(arg)
			}
		}
	}
	walk(e)
	return names
}
