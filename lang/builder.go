package lang

// Builder provides a programmatic API for constructing programs without
// parsing source text. This is useful for generating HVQL scripts with
// [Program.Format] or for testing.
//
// Example:
//
//	b := lang.NewBuilder()
//	prog := b.Program(
//	    b.Palette("yellow", "#FFD400"),
//	    b.Map("status.team",
//	        b.Case("yellow", b.Assign("player-color", "${yellow}")),
//	        b.Default(b.Assign("player-color", "#888")),
//	    ),
//	)
//
// Positions of built nodes are the zero [Position].
type Builder struct{}

// NewBuilder creates a new program builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Statement is a palette entry or map block passed to [Builder.Program].
type Statement interface {
	apply(p *Program)
}

type paletteEntry struct{ name, value string }

func (e paletteEntry) apply(p *Program) { p.Palette[e.name] = e.value }

func (m *MapBlock) apply(p *Program) { p.Maps = append(p.Maps, m) }

// Palette creates a palette entry statement.
func (b *Builder) Palette(name, value string) Statement {
	return paletteEntry{name: name, value: value}
}

// Map creates a map block. A case whose source is "*" becomes the default
// branch; as in parsed scripts, a later default replaces an earlier one.
func (b *Builder) Map(path string, cases ...*Case) *MapBlock {
	m := &MapBlock{Path: path}

	for _, c := range cases {
		if c.Source == defaultMatch {
			m.Default = c.Assigns
			m.HasDefault = true

			continue
		}

		m.Cases = append(m.Cases, c)
	}

	return m
}

// Case creates a case matching the literal written as match.
func (b *Builder) Case(match string, assigns ...*Assign) *Case {
	return &Case{
		Source:  match,
		Match:   ParseLiteral(match),
		Assigns: assigns,
	}
}

// Default creates the "*" case.
func (b *Builder) Default(assigns ...*Assign) *Case {
	return &Case{
		Source:  defaultMatch,
		Match:   ParseLiteral(defaultMatch),
		Assigns: assigns,
	}
}

// Assign creates an assignment. value is stored unexpanded.
func (b *Builder) Assign(key, value string) *Assign {
	return &Assign{Key: key, Value: value}
}

// Program creates a [Program] from the given statements in order.
func (b *Builder) Program(stmts ...Statement) *Program {
	p := &Program{Palette: make(Palette)}

	for _, s := range stmts {
		s.apply(p)
	}

	return p
}
