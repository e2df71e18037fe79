package lang

import (
	"context"
	"io"
	"iter"
	"strings"

	"github.com/ardnew/hvql/log"
)

// Program is the parsed form of an HVQL script.
// It is immutable once returned from a Parse function.
type Program struct {
	Palette Palette
	Maps    []*MapBlock
	logger  log.Logger
}

// MapBlock is one "map <path> { ... }" statement.
type MapBlock struct {
	Path       string
	Cases      []*Case
	Default    []*Assign
	Pos        Position
	DefaultPos Position
	HasDefault bool
}

// Case is one "<match> -> <assigns>" rule inside a map block.
type Case struct {
	Source  string // match text as written
	Assigns []*Assign
	Match   Literal
	Pos     Position
}

// Assign is one "key: value" pair. Value is stored unexpanded, exactly as
// written after the colon.
type Assign struct {
	Key   string
	Value string
	Pos   Position
}

// All returns an iterator over the map blocks in declaration order.
func (p *Program) All() iter.Seq[*MapBlock] {
	return func(yield func(*MapBlock) bool) {
		for _, m := range p.Maps {
			if !yield(m) {
				return
			}
		}
	}
}

// Paths returns the distinct context paths referenced by the program, in
// declaration order.
func (p *Program) Paths() []string {
	seen := make(map[string]struct{}, len(p.Maps))
	paths := make([]string, 0, len(p.Maps))

	for m := range p.All() {
		if _, ok := seen[m.Path]; ok {
			continue
		}

		seen[m.Path] = struct{}{}
		paths = append(paths, m.Path)
	}

	return paths
}

// Option configures parsing and compilation behavior.
type Option func(*config)

type config struct {
	logger  log.Logger
	noCache bool
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCache controls whether [Compile] consults the process-wide compile
// cache. Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(c *config) {
		c.noCache = !enable
	}
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Print writes an indented tree representation of the program.
func (p *Program) Print(ctx context.Context, w io.Writer) {
	put := writer(w)

	if len(p.Palette) > 0 {
		put(":\n", "Palette")

		for _, name := range sortedKeys(p.Palette) {
			put("\n", "  Entry", name, p.Palette[name])
		}
	}

	for m := range p.All() {
		m.Print(ctx, w, 0)
	}
}

// Print writes a formatted representation of the map block.
func (m *MapBlock) Print(ctx context.Context, w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)
	put("\n", prefix+"Map", m.Path+" @"+m.Pos.String())

	for _, c := range m.Cases {
		c.Print(ctx, w, indent+1)
	}

	if m.HasDefault {
		put(":\n", prefix+"  Default")

		for _, a := range m.Default {
			a.Print(ctx, w, indent+2)
		}
	}
}

// Print writes a formatted representation of the case.
func (c *Case) Print(ctx context.Context, w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)
	put("\n", prefix+"Case", c.Match.Kind.String(), c.Match.String())

	for _, a := range c.Assigns {
		a.Print(ctx, w, indent+1)
	}
}

// Print writes a formatted representation of the assignment.
func (a *Assign) Print(_ context.Context, w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)

	field := "(ignored)"
	if f, ok := LookupField(a.Key); ok {
		field = f.String()
	}

	writer(w)("\n", prefix+"Assign", a.Key+" -> "+field, a.Value)
}
