package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/hvql/log"
)

// Statement keywords.
const (
	keywordPalette = "palette"
	keywordMap     = "map"
	defaultMatch   = "*"
)

// ParseReader parses a program from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses a program from a string.
//
// Any syntax error aborts parsing; no partial program is returned. Errors are
// one of [ErrMissingOpenBrace], [ErrMissingCloseBrace],
// [ErrInvalidPaletteLine], [ErrInvalidMapCaseLine], [ErrInvalidAssignment], or
// [ErrUnknownStatement], annotated with the offending statement text.
func ParseString(ctx context.Context, s string, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(s)))

	lines := stripLines(s)
	src := strings.Join(lines, "\n")

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "lexer complete",
		slog.Int("token_count", len(toks)))

	p := &parser{
		src:    src,
		lines:  lines,
		toks:   toks,
		logger: cfg.logger,
	}

	prog, err := p.parseProgram(ctx)
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	prog.logger = cfg.logger

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("palette_count", len(prog.Palette)),
		slog.Int("map_count", len(prog.Maps)))

	return prog, nil
}

// parser holds the parser state.
type parser struct {
	src    string
	lines  []string
	toks   []token
	pos    int
	logger log.Logger
}

// parseProgram parses: statement*.
func (p *parser) parseProgram(ctx context.Context) (*Program, error) {
	prog := &Program{Palette: make(Palette)}

	for {
		p.skip(tokNewline, tokSemi)

		tok := p.peek()
		if tok.kind == tokEOF {
			return prog, nil
		}

		switch {
		case tok.kind == tokWord && tok.text == keywordPalette:
			err := p.parsePalette(ctx, prog.Palette)
			if err != nil {
				return nil, err
			}

		case tok.kind == tokWord && tok.text == keywordMap:
			m, err := p.parseMap(ctx)
			if err != nil {
				return nil, err
			}

			prog.Maps = append(prog.Maps, m)

		default:
			return nil, p.fail(ErrUnknownStatement, tok)
		}
	}
}

// parsePalette parses: 'palette' '{' palette_entry* '}'.
// Entries are merged into palette; a repeated name overwrites.
func (p *parser) parsePalette(ctx context.Context, palette Palette) error {
	kw := p.advance()

	err := p.expectOpen(kw)
	if err != nil {
		return err
	}

	for {
		p.skip(tokNewline, tokSemi)

		tok := p.peek()

		switch tok.kind {
		case tokEOF:
			return p.fail(ErrMissingCloseBrace, kw)

		case tokRBrace:
			p.advance()

			return nil
		}

		if p.atStatement(tokColon) {
			return p.fail(ErrMissingCloseBrace, kw)
		}

		name, value, err := p.parsePaletteEntry()
		if err != nil {
			return err
		}

		p.logger.TraceContext(ctx, "palette entry",
			slog.String("name", name),
			slog.String("value", value),
			slog.String("pos", tok.pos.String()))

		palette[name] = value
	}
}

// parsePaletteEntry parses: IDENT ':' VALUE.
func (p *parser) parsePaletteEntry() (name, value string, err error) {
	start := p.peek()

	if start.kind != tokWord || !isIdentifier(start.text) {
		return "", "", p.fail(ErrInvalidPaletteLine, start)
	}

	p.advance()

	if p.peek().kind != tokColon {
		return "", "", p.fail(ErrInvalidPaletteLine, start)
	}

	p.advance()

	// Commas are part of palette values, e.g. rgba(0, 0, 0, 0.5).
	value, ok := p.span(tokSemi, tokRBrace, tokNewline)
	if !ok {
		return "", "", p.fail(ErrInvalidPaletteLine, start)
	}

	return start.text, value, nil
}

// parseMap parses: 'map' PATH '{' case_line* '}'.
func (p *parser) parseMap(ctx context.Context) (*MapBlock, error) {
	kw := p.advance()

	path := p.peek()
	if path.kind != tokWord || !isPath(path.text) {
		return nil, p.fail(ErrUnknownStatement, kw)
	}

	p.advance()

	err := p.expectOpen(kw)
	if err != nil {
		return nil, err
	}

	m := &MapBlock{Path: path.text, Pos: kw.pos}

	for {
		p.skip(tokNewline, tokSemi)

		tok := p.peek()

		switch tok.kind {
		case tokEOF:
			return nil, p.fail(ErrMissingCloseBrace, kw)

		case tokRBrace:
			p.advance()

			p.logger.TraceContext(ctx, "map block",
				slog.String("path", m.Path),
				slog.Int("case_count", len(m.Cases)),
				slog.Bool("default", m.HasDefault))

			return m, nil
		}

		if p.atStatement(tokArrow) {
			return nil, p.fail(ErrMissingCloseBrace, kw)
		}

		c, err := p.parseCase()
		if err != nil {
			return nil, err
		}

		if c.Source == defaultMatch {
			// A later default silently replaces an earlier one.
			m.Default = c.Assigns
			m.DefaultPos = c.Pos
			m.HasDefault = true

			continue
		}

		m.Cases = append(m.Cases, c)
	}
}

// parseCase parses: match '->' assign (',' assign)*.
func (p *parser) parseCase() (*Case, error) {
	start := p.peek()

	match, ok := p.span(tokArrow, tokSemi, tokRBrace, tokNewline)
	if !ok || p.peek().kind != tokArrow {
		return nil, p.fail(ErrInvalidMapCaseLine, start)
	}

	p.advance()

	c := &Case{
		Source: match,
		Match:  ParseLiteral(match),
		Pos:    start.pos,
	}

	for {
		a, err := p.parseAssign(start)
		if err != nil {
			return nil, err
		}

		c.Assigns = append(c.Assigns, a)

		if p.peek().kind != tokComma {
			return c, nil
		}

		p.advance()
	}
}

// parseAssign parses: KEY ':' VALUE.
// The statement of the enclosing case line is reported on failure.
func (p *parser) parseAssign(stmt token) (*Assign, error) {
	key := p.peek()
	if key.kind != tokWord {
		return nil, p.fail(ErrInvalidAssignment, stmt)
	}

	p.advance()

	if p.peek().kind != tokColon {
		return nil, p.fail(ErrInvalidAssignment, stmt)
	}

	p.advance()

	value, ok := p.span(tokComma, tokSemi, tokRBrace, tokNewline)
	if !ok {
		return nil, p.fail(ErrInvalidAssignment, stmt)
	}

	return &Assign{Key: key.text, Value: value, Pos: key.pos}, nil
}

// expectOpen consumes '{' on the keyword line or on the next non-blank line.
func (p *parser) expectOpen(kw token) error {
	p.skip(tokNewline)

	if p.peek().kind != tokLBrace {
		return p.fail(ErrMissingOpenBrace, kw)
	}

	p.advance()

	return nil
}

// span consumes tokens up to (not including) the first token of one of the
// given stop kinds or EOF, and returns the trimmed source text they cover.
// It reports false if no tokens were consumed.
func (p *parser) span(stop ...tokenKind) (string, bool) {
	first := p.peek()
	last := first

	for {
		tok := p.peek()
		if tok.kind == tokEOF || isKind(tok.kind, stop...) {
			break
		}

		last = p.advance()
	}

	if first == last && p.peek() == first {
		return "", false
	}

	text := strings.TrimSpace(p.src[first.pos.Offset:last.end])

	return text, text != ""
}

// fail builds a parse error for the statement on the line of tok.
func (p *parser) fail(err *Error, tok token) *Error {
	return err.Statement(p.statement(tok)).At(tok.pos)
}

// statement returns the trimmed source line containing tok.
func (p *parser) statement(tok token) string {
	line := tok.pos.Line - 1
	if tok.kind == tokEOF {
		// Report the last non-blank line rather than an empty one.
		for line >= 0 && line < len(p.lines) && strings.TrimSpace(p.lines[line]) == "" {
			line--
		}
	}

	if line < 0 || line >= len(p.lines) {
		return ""
	}

	return strings.TrimSpace(p.lines[line])
}

// Helper methods

func (p *parser) peek() token {
	return p.toks[p.pos]
}

// peekNext returns the token after the next one.
func (p *parser) peekNext() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}

	return p.toks[len(p.toks)-1]
}

// atStatement reports whether the next token is a statement keyword opening
// a new block, rather than the first token of a body line. A body line may
// still start with a keyword when it is followed by follow, as in
// "map: #fff" inside a palette.
func (p *parser) atStatement(follow tokenKind) bool {
	tok := p.peek()
	if tok.kind != tokWord ||
		(tok.text != keywordPalette && tok.text != keywordMap) {
		return false
	}

	return p.peekNext().kind != follow
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) skip(kinds ...tokenKind) {
	for isKind(p.peek().kind, kinds...) {
		p.advance()
	}
}

func isKind(k tokenKind, kinds ...tokenKind) bool {
	for _, kind := range kinds {
		if k == kind {
			return true
		}
	}

	return false
}

// Character classification

// isIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_-]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch {
		case ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
		case i > 0 && (ch == '-' || (ch >= '0' && ch <= '9')):
		default:
			return false
		}
	}

	return true
}

// isPath reports whether s is a dot-separated sequence of non-empty segments.
func isPath(s string) bool {
	for seg := range strings.SplitSeq(s, ".") {
		if seg == "" || strings.ContainsAny(seg, "$#") {
			return false
		}
	}

	return s != ""
}
