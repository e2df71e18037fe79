package lang

import (
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokNewline tokenKind = iota
	tokLBrace
	tokRBrace
	tokSemi
	tokComma
	tokColon
	tokArrow
	tokString
	tokWord
	tokEOF
)

// String returns a string representation of the token kind.
func (k tokenKind) String() string {
	switch k {
	case tokNewline:
		return "newline"

	case tokLBrace:
		return "'{'"

	case tokRBrace:
		return "'}'"

	case tokSemi:
		return "';'"

	case tokComma:
		return "','"

	case tokColon:
		return "':'"

	case tokArrow:
		return "'->'"

	case tokString:
		return "string"

	case tokWord:
		return "word"

	case tokEOF:
		return "end of input"

	default:
		return "unknown"
	}
}

// token is a single lexeme with its source span.
type token struct {
	text string
	pos  Position
	end  int // byte offset one past the last byte
	kind tokenKind
}

// Position identifies a location in HVQL source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether p refers to a real source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Word characters are anything except whitespace, braces, and the separators
// ':' ';' ',' plus quotes. A '-' may appear inside a word only when it does
// not begin an arrow, and "${...}" is always consumed whole. The name inside
// "${...}" excludes '$' and '{' so an unterminated reference never scans past
// the next one.
const wordPattern = `([^ \t\n{}:;,"'\-]|\-?\$\{[^}\n{$]*\}|\-[^ \t\n{}:;,"'>\-$])+`

var lexer = sync.OnceValues(func() (*lexmachine.Lexer, error) {
	lex := lexmachine.NewLexer()

	lex.Add([]byte(`\n`), emit(tokNewline))
	lex.Add([]byte(`[ \t]+`), skip)
	lex.Add([]byte(`\{`), emit(tokLBrace))
	lex.Add([]byte(`\}`), emit(tokRBrace))
	lex.Add([]byte(`;`), emit(tokSemi))
	lex.Add([]byte(`,`), emit(tokComma))
	lex.Add([]byte(`:`), emit(tokColon))
	lex.Add([]byte(`\->`), emit(tokArrow))
	lex.Add([]byte(`"[^"\n]*"`), emit(tokString))
	lex.Add([]byte(`'[^'\n]*'`), emit(tokString))
	lex.Add([]byte(wordPattern), emit(tokWord))
	// Stray dashes and unterminated quotes are ordinary text.
	lex.Add([]byte(`\-`), emit(tokWord))
	lex.Add([]byte(`["']`), emit(tokWord))

	if err := lex.Compile(); err != nil {
		return nil, err
	}

	return lex, nil
})

func emit(kind tokenKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (any, error) {
		return s.Token(int(kind), nil, m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (any, error) {
	return nil, nil //nolint:nilnil
}

// tokenize splits preprocessed source text into tokens. The returned slice
// always ends with a tokEOF token.
func tokenize(src string) ([]token, error) {
	lex, err := lexer()
	if err != nil {
		return nil, ErrLexer.Wrap(err)
	}

	scanner, err := lex.Scanner([]byte(src))
	if err != nil {
		return nil, ErrLexer.Wrap(err)
	}

	lines := indexLines(src)
	toks := make([]token, 0, len(src)/4+1)

	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		var ui *machines.UnconsumedInput
		if errors.As(err, &ui) {
			// Every byte is covered by some pattern; resynchronize anyway.
			scanner.TC = ui.FailTC

			continue
		}

		if err != nil {
			return nil, ErrLexer.Wrap(err)
		}

		t, ok := tok.(*lexmachine.Token)
		if !ok {
			continue
		}

		toks = append(toks, token{
			kind: tokenKind(t.Type),
			text: string(t.Lexeme),
			pos:  lines.position(t.TC),
			end:  t.TC + len(t.Lexeme),
		})
	}

	return append(toks, token{
		kind: tokEOF,
		pos:  lines.position(len(src)),
		end:  len(src),
	}), nil
}

// lineIndex holds the byte offset at which each line of a source text starts.
type lineIndex []int

func indexLines(src string) lineIndex {
	idx := lineIndex{0}

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}

	return idx
}

// position converts a byte offset into a 1-based line and column.
func (idx lineIndex) position(offset int) Position {
	// Index of the last line starting at or before offset.
	n, found := slices.BinarySearch(idx, offset)
	if !found {
		n--
	}

	return Position{
		Offset: offset,
		Line:   n + 1,
		Column: offset - idx[n] + 1,
	}
}
