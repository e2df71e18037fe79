package lang

import (
	"regexp"
	"strconv"
	"strings"
)

// LiteralKind indicates the type of a [Literal].
type LiteralKind int

const (
	// LiteralString is a quoted or bare string.
	LiteralString LiteralKind = iota

	// LiteralNumber is a signed decimal number.
	LiteralNumber

	// LiteralBoolean is true or false.
	LiteralBoolean
)

// String returns a string representation of the literal kind.
func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "String"

	case LiteralNumber:
		return "Number"

	case LiteralBoolean:
		return "Boolean"

	default:
		return "Unknown"
	}
}

// Literal is a parsed match value or assignment value.
type Literal struct {
	Str  string
	Num  float64
	Kind LiteralKind
	Bool bool
}

var numberPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseLiteral coerces raw source text into a [Literal].
//
// Coercion is attempted in order:
//
//  1. Trailing semicolons and surrounding whitespace are removed.
//  2. Text wrapped in matching single or double quotes is a string literal
//     of the inner text, with no further coercion.
//  3. "true" and "false", compared case-insensitively, are booleans.
//  4. An optionally signed decimal number is a number.
//  5. Anything else is a bare string.
func ParseLiteral(raw string) Literal {
	s := trimValue(raw)

	if inner, ok := unquote(s); ok {
		return Literal{Kind: LiteralString, Str: inner}
	}

	switch {
	case strings.EqualFold(s, "true"):
		return Literal{Kind: LiteralBoolean, Bool: true}

	case strings.EqualFold(s, "false"):
		return Literal{Kind: LiteralBoolean, Bool: false}
	}

	if numberPattern.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return Literal{Kind: LiteralNumber, Num: n}
		}
	}

	return Literal{Kind: LiteralString, Str: s}
}

// String returns the canonical text of the literal. Numbers use the shortest
// decimal representation, so "80", "+80" and "80.0" all yield "80".
func (l Literal) String() string {
	switch l.Kind {
	case LiteralNumber:
		return formatNumber(l.Num)

	case LiteralBoolean:
		return strconv.FormatBool(l.Bool)

	default:
		return l.Str
	}
}

// Native returns the literal as a Go string, float64, or bool.
func (l Literal) Native() any {
	switch l.Kind {
	case LiteralNumber:
		return l.Num

	case LiteralBoolean:
		return l.Bool

	default:
		return l.Str
	}
}

// trimValue strips surrounding whitespace and any run of trailing semicolons.
func trimValue(raw string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), ";"))
}

// unquote returns the text inside matching single or double quotes.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}

	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s, false
	}

	return s[1 : len(s)-1], true
}

func formatNumber(n float64) string {
	if n == 0 {
		return "0" // no "-0"
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}
