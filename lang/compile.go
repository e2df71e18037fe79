package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/hvql/log"
)

// assignment is one resolved output write: the field, its expanded text, and
// for numeric fields its coerced value.
type assignment struct {
	str   string
	num   float64
	field Field
}

type compiledCase struct {
	assigns []assignment
	match   matcher
}

type compiledBlock struct {
	path       []segment
	cases      []compiledCase
	fallback   []assignment
	hasDefault bool
}

// Evaluator applies a compiled program to view contexts.
//
// An Evaluator holds only immutable state; [Evaluator.Apply] is safe for
// concurrent use and never fails.
type Evaluator struct {
	program *Program
	env     *Environment
	blocks  []compiledBlock
	logger  log.Logger
}

// Compile parses script and compiles it against base. The script palette is
// merged over base's palette. base may be nil.
//
// Results are memoized by the hash of script and base unless [WithCache] is
// used to disable caching.
func Compile(
	ctx context.Context,
	script string,
	base *Environment,
	opts ...Option,
) (*Evaluator, error) {
	cfg := makeConfig(opts...)
	if cfg.noCache {
		return compileString(ctx, script, base, opts...)
	}

	return compileCached(ctx, script, base, opts...)
}

func compileString(
	ctx context.Context,
	script string,
	base *Environment,
	opts ...Option,
) (*Evaluator, error) {
	prog, err := ParseString(ctx, script, opts...)
	if err != nil {
		return nil, err
	}

	return CompileProgram(ctx, prog, base, opts...)
}

// CompileProgram compiles an already parsed program against base.
//
// All context-independent work happens here: field lookup, template
// expansion, numeric coercion, and case folding of match values.
func CompileProgram(
	ctx context.Context,
	prog *Program,
	base *Environment,
	opts ...Option,
) (*Evaluator, error) {
	cfg := makeConfig(opts...)

	logger := cfg.logger
	if logger.Logger == nil {
		logger = prog.logger
	}

	env := base.Merge(prog.Palette)

	e := &Evaluator{
		program: prog,
		env:     env,
		blocks:  make([]compiledBlock, 0, len(prog.Maps)),
		logger:  logger,
	}

	for m := range prog.All() {
		b := compiledBlock{
			path:       splitPath(m.Path),
			cases:      make([]compiledCase, 0, len(m.Cases)),
			hasDefault: m.HasDefault,
		}

		for _, c := range m.Cases {
			b.cases = append(b.cases, compiledCase{
				match:   newMatcher(c.Match),
				assigns: e.compileAssigns(ctx, c.Assigns),
			})
		}

		if m.HasDefault {
			b.fallback = e.compileAssigns(ctx, m.Default)
		}

		e.blocks = append(e.blocks, b)
	}

	logger.TraceContext(ctx, "compile complete",
		slog.Int("block_count", len(e.blocks)),
		slog.Int("palette_count", len(env.Palette)),
		slog.Int("var_count", len(env.Vars)))

	return e, nil
}

// compileAssigns resolves the assignments of one branch. Unknown keys and
// invalid numeric values are dropped here, once, rather than on every Apply.
func (e *Evaluator) compileAssigns(
	ctx context.Context,
	assigns []*Assign,
) []assignment {
	out := make([]assignment, 0, len(assigns))

	for _, a := range assigns {
		field, ok := LookupField(a.Key)
		if !ok {
			e.logger.TraceContext(ctx, "assignment ignored",
				slog.String("key", a.Key),
				slog.String("pos", a.Pos.String()),
				slog.String("reason", "unknown key"))

			continue
		}

		text := Expand(a.Value, e.env)
		asg := assignment{field: field, str: text}

		if field.Numeric() {
			n, ok := parseNumeric(text)
			if !ok {
				e.logger.TraceContext(ctx, "assignment ignored",
					slog.String("key", a.Key),
					slog.String("value", text),
					slog.String("pos", a.Pos.String()),
					slog.String("reason", "not a number"))

				continue
			}

			asg.num = n
		}

		out = append(out, asg)
	}

	return out
}

// Apply computes the style for one context. ctx may be a [ViewContext],
// *ViewContext, map[string]any, or nil.
//
// Blocks are applied in declaration order, each contributing the assignments
// of its first matching case (or its default). A later write to a field
// replaces an earlier one. The returned style is freshly allocated.
func (e *Evaluator) Apply(ctx any) ViewStyle {
	var style ViewStyle

	if e == nil {
		return style
	}

	for i := range e.blocks {
		b := &e.blocks[i]

		v, defined := resolve(ctx, b.path)

		assigns, ok := b.selectCase(v, defined)
		if !ok {
			continue
		}

		for _, a := range assigns {
			style.set(a)
		}
	}

	return style
}

// Func returns Apply as a function value.
func (e *Evaluator) Func() func(any) ViewStyle {
	return e.Apply
}

// Program returns the program e was compiled from.
func (e *Evaluator) Program() *Program {
	if e == nil {
		return &Program{}
	}

	return e.program
}

// Environment returns a copy of the merged environment e was compiled with.
func (e *Evaluator) Environment() *Environment {
	if e == nil {
		return (*Environment)(nil).Merge(nil)
	}

	return e.env.Merge(nil)
}

// NopEvaluator returns an evaluator whose Apply always yields an empty
// style. Hosts use it in place of a script that failed to compile.
func NopEvaluator() *Evaluator {
	return &Evaluator{
		program: &Program{Palette: Palette{}},
		env:     (*Environment)(nil).Merge(nil),
	}
}
