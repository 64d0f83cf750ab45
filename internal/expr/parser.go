package expr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paveg/tabeline/internal/errors"
)

var reserved = map[string]bool{
	"None":  true,
	"True":  true,
	"False": true,
	"inf":   true,
	"nan":   true,
}

// IsReserved reports whether name is a keyword that cannot name a column in
// an expression.
func IsReserved(name string) bool {
	return reserved[name]
}

// Parse parses a complete formula. Trailing input is an error.
//
// Precedence, lowest first: | then & then ~ then a single comparison, then
// + -, then * / // %, then unary + -, then ** (right-associative), then
// atoms: None, True, False, numbers, 'strings', calls, names, and
// parenthesized expressions.
//
// Floor division // is an extension beside the core * / % operators. It
// binds like / and floors its quotient toward negative infinity.
func Parse(source string) (Expr, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{source: source, tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected %q after expression", tok.text))
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(source string) Expr {
	e, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	source string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorAt(tok token, message string) error {
	return &errors.ParseError{Source: p.source, Position: tok.pos, Message: message}
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokenPipe) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary(left, OpOr, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.accept(tokenAmp) {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = Binary(left, OpAnd, right)
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.accept(tokenTilde) {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Unary(UnaryNot, operand), nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenKind]BinaryOp{
	tokenEq: OpEq,
	tokenNe: OpNe,
	tokenLt: OpLt,
	tokenLe: OpLe,
	tokenGt: OpGt,
	tokenGe: OpGe,
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOps[p.peek().kind]
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return Binary(left, op, right), nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().kind {
		case tokenPlus:
			op = OpAdd
		case tokenMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = Binary(left, op, right)
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.peek().kind {
		case tokenStar:
			op = OpMul
		case tokenSlash:
			op = OpDiv
		case tokenDoubleSlash:
			op = OpFloorDiv
		case tokenPercent:
			op = OpMod
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = Binary(left, op, right)
	}
}

func (p *parser) parseFactor() (Expr, error) {
	switch {
	case p.accept(tokenPlus):
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Unary(UnaryPos, operand), nil
	case p.accept(tokenMinus):
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Unary(UnaryNeg, operand), nil
	}

	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.accept(tokenDoubleStar) {
		return base, nil
	}
	exponent, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return Binary(base, OpPow, exponent), nil
}

func (p *parser) parseAtom() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokenInt:
		v, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "integer literal out of range")
		}
		return Lit(v), nil
	case tokenFloat:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid float literal")
		}
		return Lit(v), nil
	case tokenString:
		return Lit(tok.text), nil
	case tokenIdent:
		return p.parseName(tok)
	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, p.errorAt(closing, "expected )")
		}
		return inner, nil
	case tokenEOF:
		return nil, p.errorAt(tok, "expected expression, but reached end of input")
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("expected expression, but found %q", tok.text))
	}
}

func (p *parser) parseName(tok token) (Expr, error) {
	switch tok.text {
	case "None":
		return Null(), nil
	case "True":
		return Lit(true), nil
	case "False":
		return Lit(false), nil
	case "inf":
		return Lit(math.Inf(1)), nil
	case "nan":
		return Lit(math.NaN()), nil
	}

	if !p.accept(tokenLParen) {
		return Col(tok.text), nil
	}
	var args []Expr
	if p.accept(tokenRParen) {
		return Call(tok.text, args...), nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(tokenComma) {
			continue
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, p.errorAt(closing, "expected , or ) in argument list")
		}
		return Call(tok.text, args...), nil
	}
}
