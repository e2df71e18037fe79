package lang

import (
	"strconv"
	"sync"

	"golang.org/x/text/cases"
)

// A Caser is stateful and must not be shared between goroutines.
var folders = sync.Pool{
	New: func() any {
		c := cases.Fold()

		return &c
	},
}

func fold(s string) string {
	c, _ := folders.Get().(*cases.Caser)
	defer folders.Put(c)

	return c.String(s)
}

// matcher is a compiled case match value.
type matcher struct {
	text string // canonical form; case-folded for strings
	kind LiteralKind
}

func newMatcher(l Literal) matcher {
	m := matcher{kind: l.Kind, text: l.String()}
	if l.Kind == LiteralString {
		m.text = fold(m.text)
	}

	return m
}

// matches reports whether a resolved context value equals the match literal.
//
// Strings compare case-insensitively, numbers by canonical text, and booleans
// by value. Values of different kinds never match: the string "80" does not
// match the number 80.
func (m matcher) matches(v any) bool {
	switch val := v.(type) {
	case string:
		return m.kind == LiteralString && fold(val) == m.text

	case bool:
		return m.kind == LiteralBoolean && strconv.FormatBool(val) == m.text

	default:
		if m.kind != LiteralNumber {
			return false
		}

		n, ok := toNumber(val)

		return ok && formatNumber(n) == m.text
	}
}

// selectCase returns the assignments of the first case in b matching v, or
// the default branch if none match. It reports false if nothing applies.
func (b *compiledBlock) selectCase(v any, defined bool) ([]assignment, bool) {
	if defined {
		for i := range b.cases {
			if b.cases[i].match.matches(v) {
				return b.cases[i].assigns, true
			}
		}
	}

	if b.hasDefault {
		return b.fallback, true
	}

	return nil, false
}
