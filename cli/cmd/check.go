package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
)

// Check parses scripts and reports syntax errors without evaluating them.
type Check struct {
	Env     string   `help:"Environment file used when compiling"`
	Quiet   bool     `help:"Only report failures"                   short:"q"`
	Scripts []string `help:"Script files or '-' for stdin"          arg:"" name:"script" default:"-" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	env, err := loadEnv(ctx, c.Env)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)
	failed := 0

	for src := range uniqueSources(c.Scripts) {
		err := checkOne(ctx, src.name, env)
		if err == nil {
			if !c.Quiet {
				fmt.Fprintf(w, "%s: ok\n", src.name)
			}

			continue
		}

		failed++

		fmt.Fprintln(w, describeError(src.name, err))
	}

	if failed > 0 {
		return ErrCheckFailed.With(slog.Int("failed", failed))
	}

	return nil
}

func checkOne(ctx context.Context, path string, env *lang.Environment) error {
	src, err := readScript(path)
	if err != nil {
		return err
	}

	prog, err := lang.ParseString(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	_, err = lang.CompileProgram(ctx, prog, env, lang.WithLogger(log.Default()))

	return err
}

// describeError renders err as "path:line:column: message", dropping the
// position when the error carries none.
func describeError(path string, err error) string {
	var le *lang.Error
	if !errors.As(err, &le) {
		return path + ": " + err.Error()
	}

	line, column := 0, 0

	for _, a := range le.Attrs() {
		switch a.Key {
		case "line":
			line = int(a.Value.Int64())
		case "column":
			column = int(a.Value.Int64())
		}
	}

	if line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", path, line, column, le.Error())
	}

	return path + ": " + le.Error()
}
