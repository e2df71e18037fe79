package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hvql/cli/cmd/repl"
	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
	"github.com/ardnew/hvql/reload"
)

// Repl starts an interactive session for trying contexts against a script.
type Repl struct {
	Script string `arg:"" help:"Script file"                                name:"script"`
	Env    string `       help:"Environment file with palette and vars"`
	Watch  bool   `       help:"Recompile when the script changes on disk"               default:"true" negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)

	var cacheDir string
	if ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	env, err := loadEnv(ctx, r.Env)
	if err != nil {
		return err
	}

	// Successful reloads are reported by the REPL itself; only failures
	// reach the log.
	logger := log.With(slog.String("component", "repl"))

	src, err := reload.New(ctx, r.Script, env,
		reload.WithLogger(logger.Wrap(log.WithLevel(log.LevelWarn))),
		reload.WithWatch(r.Watch),
		reload.WithCompileOptions(lang.WithLogger(logger)),
	)
	if err != nil {
		return lang.WrapError(err).With(slog.String("path", r.Script))
	}
	defer src.Close()

	return repl.Run(ctx, src, cacheDir, logger)
}
