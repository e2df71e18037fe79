package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
)

// Fmt parses a script and writes it back in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical HVQL (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree."`
	Dump   Dump   `cmd:""                    help:"Dump the parsed Go structures."`
}

// Native formats a script as canonical HVQL.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Source string `arg:"" default:"-" help:"Script file or '-' for default stdin." name:"source" optional:""`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, outputFrom(ctx), f.Indent)
}

// JSON formats a script as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Script file or '-' for default stdin." name:"source" optional:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, outputFrom(ctx), j.Indent)
}

// YAML formats a script as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Script file or '-' for default stdin." name:"source" optional:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, outputFrom(ctx), y.Indent)
}

// AST prints the syntax tree with source positions.
type AST struct {
	Source string `arg:"" default:"-" help:"Script file or '-' for default stdin." name:"source" optional:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	prog.Print(ctx, outputFrom(ctx))

	return nil
}

// Dump prints the parsed program with go-spew.
type Dump struct {
	Source string `arg:"" default:"-" help:"Script file or '-' for default stdin." name:"source" optional:""`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, d.Source, "dump")
	if err != nil {
		return err
	}

	prog.Dump(outputFrom(ctx))

	return nil
}

func parseSource(ctx context.Context, path, format string) (*lang.Program, error) {
	src, err := readScript(path)
	if err != nil {
		return nil, err
	}

	prog, err := lang.ParseString(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("path", path),
			slog.String("format", format),
		)
	}

	return prog, nil
}
