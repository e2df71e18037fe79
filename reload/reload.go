package reload

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
)

// DefaultDebounce is how long a burst of file events must settle before the
// script is recompiled.
const DefaultDebounce = 50 * time.Millisecond

// ErrClosed is returned by [Source.Reload] after [Source.Close].
var ErrClosed = errors.New("reload source closed")

// Source holds the evaluator compiled from a script file and swaps in a new
// one each time the file changes.
//
// A failed recompile keeps the previous evaluator in service; the failure is
// reported by [Source.LastError] until the next successful compile.
type Source struct {
	path     string
	env      *lang.Environment
	compile  []lang.Option
	logger   log.Logger
	notify   func(*lang.Evaluator, error)
	debounce time.Duration
	watch    bool

	eval    atomic.Pointer[lang.Evaluator]
	lastErr atomic.Pointer[error]

	mu      sync.Mutex // serializes reloads
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// Option configures a [Source].
type Option func(*Source)

// WithLogger sets the logger used for reload events.
func WithLogger(logger log.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// WithCompileOptions sets options passed to [lang.Compile].
func WithCompileOptions(opts ...lang.Option) Option {
	return func(s *Source) { s.compile = append(s.compile, opts...) }
}

// WithNotify registers fn to be called after every reload attempt with the
// evaluator now in service and the compile error, if any.
func WithNotify(fn func(*lang.Evaluator, error)) Option {
	return func(s *Source) { s.notify = fn }
}

// WithDebounce sets the settle time for file events.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) { s.debounce = d }
}

// WithWatch controls whether the file is watched for changes. Without
// watching, the script is only recompiled by [Source.Reload].
func WithWatch(enable bool) Option {
	return func(s *Source) { s.watch = enable }
}

// New compiles the script at path against env and, unless disabled with
// [WithWatch], starts watching it. The initial compile must succeed.
//
// Watching stops when ctx is done or [Source.Close] is called.
func New(
	ctx context.Context,
	path string,
	env *lang.Environment,
	opts ...Option,
) (*Source, error) {
	s := &Source{
		path:     path,
		env:      env,
		debounce: DefaultDebounce,
		watch:    true,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Every edit produces a new script; caching them would only grow.
	s.compile = append(s.compile, lang.WithCache(false))

	e, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.eval.Store(e)

	if !s.watch {
		return s, nil
	}

	err = s.start(ctx)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the watched script path.
func (s *Source) Path() string { return s.path }

// Evaluator returns the evaluator currently in service.
func (s *Source) Evaluator() *lang.Evaluator { return s.eval.Load() }

// LastError returns the error of the most recent reload, or nil if it
// succeeded.
func (s *Source) LastError() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}

	return nil
}

// Reload recompiles the script now.
func (s *Source) Reload(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load(ctx)
	if err != nil {
		s.lastErr.Store(&err)

		s.logger.WarnContext(ctx, "reload failed",
			slog.String("path", s.path),
			slog.Any("error", err))
	} else {
		s.eval.Store(e)
		s.lastErr.Store(nil)

		s.logger.InfoContext(ctx, "reloaded",
			slog.String("path", s.path),
			slog.Int("map_count", len(e.Program().Maps)))
	}

	if s.notify != nil {
		s.notify(s.Evaluator(), err)
	}

	return err
}

// Close stops watching. The last evaluator remains available.
func (s *Source) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()

	if s.watcher != nil {
		return s.watcher.Close()
	}

	return nil
}

func (s *Source) load(ctx context.Context) (*lang.Evaluator, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).
			With(slog.String("path", s.path))
	}

	return lang.Compile(ctx, string(data), s.env,
		append([]lang.Option{lang.WithLogger(s.logger)}, s.compile...)...)
}

// start watches the directory containing the script, since editors often
// replace a file by renaming over it.
func (s *Source) start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(s.path)
	if err != nil {
		_ = w.Close()

		return err
	}

	err = w.Add(filepath.Dir(abs))
	if err != nil {
		_ = w.Close()

		return err
	}

	s.watcher = w

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)

	go s.run(ctx, abs)

	s.logger.DebugContext(ctx, "watching",
		slog.String("path", abs))

	return nil
}

func (s *Source) run(ctx context.Context, abs string) {
	defer s.wg.Done()

	timer := time.NewTimer(s.debounce)
	timer.Stop()

	defer timer.Stop()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(ev.Name) != abs || ev.Op&relevant == 0 {
				continue
			}

			s.logger.TraceContext(ctx, "file event",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))

			timer.Reset(s.debounce)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

			s.logger.WarnContext(ctx, "watch error",
				slog.String("path", abs),
				slog.Any("error", err))

		case <-timer.C:
			_ = s.Reload(ctx)
		}
	}
}
