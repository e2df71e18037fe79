package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
)

// Eval applies a script to view contexts and prints the resulting styles.
type Eval struct {
	Script  string   `arg:"" help:"Script file or '-' for stdin"                                name:"script" default:"-" optional:""`
	Context []string `       help:"Context file (YAML or JSON object or array), '-' for stdin" short:"c"`
	Expr    []string `       help:"Context given as an expr map literal, e.g. '{player: 1}'"    short:"e"`
	Env     string   `       help:"Environment file with palette and vars"`
	Format  string   `       help:"Output format (${enum})"                                    short:"o"     default:"native" enum:"native,json,yaml"`
	Indent  int      `       help:"Indentation for json and yaml output"                                     default:"0"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eval, err := compileScript(ctx, e.Script, e.Env)
	if err != nil {
		return err
	}

	contexts, err := readContexts(ctx, e.Context, e.Expr)
	if err != nil {
		return err
	}

	// With no contexts the script is applied once to an empty context,
	// which selects every default branch.
	if len(contexts) == 0 {
		contexts = []map[string]any{{}}
	}

	w := outputFrom(ctx)

	for i, c := range contexts {
		style := eval.Apply(c)

		log.TraceContext(ctx, "applied context",
			slog.Int("index", i),
			slog.String("style", lang.StyleString(style)))

		if err := lang.FormatStyle(ctx, w, style, e.Format, e.Indent); err != nil {
			return err
		}
	}

	return nil
}
