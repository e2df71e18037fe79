package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/hvql/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the script file in the
// user's editor and recompiles it when the editor exits. When the edited
// script does not compile the user is asked whether to edit again; the
// previous evaluator stays in service either way.
type editCommand struct {
	source  Source
	ctxFunc func() context.Context
	logger  log.Logger
	err     error // last compile error, nil on success
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-compile-retry loop. It returns [ErrEditDeclined]
// when the user gives up on a script that does not compile.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	for {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, c.source.Path()); err != nil {
			return err
		}

		c.err = c.source.Reload(ctx)

		c.logger.TraceContext(ctx, "editor reload attempt",
			slog.String("path", c.source.Path()),
			slog.Bool("success", c.err == nil))

		if c.err == nil {
			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", c.err)
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// editorCommand returns the editor command line from $VISUAL or $EDITOR.
func editorCommand() []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if args := strings.Fields(os.Getenv(name)); len(args) > 0 {
			return args
		}
	}

	return []string{defaultEditor}
}

// runEditor launches the user's editor on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := append(editorCommand(), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
