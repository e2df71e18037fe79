package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
	"github.com/ardnew/hvql/reload"
	"github.com/ardnew/hvql/server"
)

// Serve exposes a script over HTTP and websocket.
type Serve struct {
	Script    string        `arg:"" help:"Script file"                                  name:"script"`
	Addr      string        `       help:"Listen address"                                              default:":8080" short:"a"`
	Env       string        `       help:"Environment file with palette and vars"`
	Watch     bool          `       help:"Recompile when the script changes"                            default:"true"  negatable:""`
	Origins   []string      `       help:"Allowed CORS origins"                                                         sep:","`
	MaxBody   int64         `       help:"Maximum request body in bytes"                               default:"1048576"`
	Grace     time.Duration `       help:"Shutdown grace period"                                       default:"5s"`
	Profiling bool          `       help:"Mount /debug/pprof (requires the pprof build tag)"`
}

// Run executes the serve command. It returns when interrupted.
func (s *Serve) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := loadEnv(ctx, s.Env)
	if err != nil {
		return err
	}

	logger := log.With(slog.String("component", "serve"))

	src, err := reload.New(ctx, s.Script, env,
		reload.WithLogger(logger),
		reload.WithWatch(s.Watch),
		reload.WithCompileOptions(lang.WithLogger(log.Default())),
	)
	if err != nil {
		return lang.WrapError(err).With(slog.String("path", s.Script))
	}
	defer src.Close()

	go reloadOnHangup(ctx, src, logger)

	h := server.New(src,
		server.WithLogger(log.Default()),
		server.WithOrigins(s.Origins...),
		server.WithMaxBody(s.MaxBody),
		server.WithProfiling(s.Profiling),
	)

	logger.InfoContext(ctx, "listening",
		slog.String("addr", s.Addr),
		slog.String("script", s.Script),
		slog.Bool("watch", s.Watch))

	return server.ListenAndServe(ctx, s.Addr, h, s.Grace)
}

// reloadOnHangup recompiles the script on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, src *reload.Source, logger log.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return

		case <-hup:
			logger.InfoContext(ctx, "reload requested")

			_ = src.Reload(ctx)
		}
	}
}
