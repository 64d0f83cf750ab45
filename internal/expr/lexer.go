package expr

import (
	"github.com/paveg/tabeline/internal/errors"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenInt
	tokenFloat
	tokenString
	tokenPlus
	tokenMinus
	tokenStar
	tokenDoubleStar
	tokenSlash
	tokenDoubleSlash
	tokenPercent
	tokenEq
	tokenNe
	tokenLt
	tokenLe
	tokenGt
	tokenGe
	tokenAmp
	tokenPipe
	tokenTilde
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var punctuation = []struct {
	text string
	kind tokenKind
}{
	// Two-character operators come first so they win over their prefixes.
	{"**", tokenDoubleStar},
	{"//", tokenDoubleSlash},
	{"==", tokenEq},
	{"!=", tokenNe},
	{"<=", tokenLe},
	{">=", tokenGe},
	{"+", tokenPlus},
	{"-", tokenMinus},
	{"*", tokenStar},
	{"/", tokenSlash},
	{"%", tokenPercent},
	{"<", tokenLt},
	{">", tokenGt},
	{"&", tokenAmp},
	{"|", tokenPipe},
	{"~", tokenTilde},
	{"(", tokenLParen},
	{")", tokenRParen},
	{",", tokenComma},
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// tokenize splits source into tokens, ending with tokenEOF.
func tokenize(source string) ([]token, error) {
	var tokens []token
	i := 0
	for {
		for i < len(source) && isSpace(source[i]) {
			i++
		}
		if i >= len(source) {
			tokens = append(tokens, token{kind: tokenEOF, pos: i})
			return tokens, nil
		}

		start := i
		c := source[i]
		switch {
		case isDigit(c):
			kind, end := scanNumber(source, i)
			tokens = append(tokens, token{kind: kind, text: source[start:end], pos: start})
			i = end
		case isIdentStart(c):
			for i < len(source) && isIdentPart(source[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: source[start:i], pos: start})
		case c == '\'':
			i++
			for i < len(source) && source[i] != '\'' {
				i++
			}
			if i >= len(source) {
				return nil, &errors.ParseError{Source: source, Position: start, Message: "unterminated string literal"}
			}
			i++
			tokens = append(tokens, token{kind: tokenString, text: source[start+1 : i-1], pos: start})
		default:
			matched := false
			for _, p := range punctuation {
				if len(source)-i >= len(p.text) && source[i:i+len(p.text)] == p.text {
					tokens = append(tokens, token{kind: p.kind, text: p.text, pos: start})
					i += len(p.text)
					matched = true
					break
				}
			}
			if !matched {
				return nil, &errors.ParseError{Source: source, Position: start, Message: "unexpected character " + string(c)}
			}
		}
	}
}

// scanNumber reads an integer or float literal starting at i. A float has a
// fraction (digits after a point), an exponent, or both.
func scanNumber(source string, i int) (tokenKind, int) {
	for i < len(source) && isDigit(source[i]) {
		i++
	}
	kind := tokenInt
	if i+1 < len(source) && source[i] == '.' && isDigit(source[i+1]) {
		i++
		for i < len(source) && isDigit(source[i]) {
			i++
		}
		kind = tokenFloat
	}
	if i < len(source) && (source[i] == 'e' || source[i] == 'E') {
		j := i + 1
		if j < len(source) && (source[j] == '+' || source[j] == '-') {
			j++
		}
		if j < len(source) && isDigit(source[j]) {
			for j < len(source) && isDigit(source[j]) {
				j++
			}
			return tokenFloat, j
		}
	}
	return kind, i
}
