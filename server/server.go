package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ardnew/hvql/lang"
	"github.com/ardnew/hvql/log"
	"github.com/ardnew/hvql/pkg"
	"github.com/ardnew/hvql/profile"
)

// DefaultMaxBody is the default limit on request and message sizes.
const DefaultMaxBody = 1 << 20

// ErrBodyTooLarge is reported when a request body exceeds the limit.
var ErrBodyTooLarge = lang.NewError("request body too large")

// Source provides the evaluator in service. [reload.Source] implements it.
type Source interface {
	Evaluator() *lang.Evaluator
	LastError() error
}

type static struct{ e *lang.Evaluator }

func (s static) Evaluator() *lang.Evaluator { return s.e }
func (static) LastError() error             { return nil }

// Static returns a Source that always serves e.
func Static(e *lang.Evaluator) Source { return static{e} }

// Option configures the handler returned by [New].
type Option func(*config)

type config struct {
	logger  log.Logger
	origins []string
	maxBody int64
	pprof   bool
}

// WithLogger sets the logger for access logs, panics, and stream errors.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithOrigins enables CORS for the given origins. "*" allows any origin.
// Websocket upgrades are checked against the same list.
func WithOrigins(origins ...string) Option {
	return func(c *config) { c.origins = append(c.origins, origins...) }
}

// WithMaxBody limits request bodies and stream messages to n bytes.
func WithMaxBody(n int64) Option {
	return func(c *config) { c.maxBody = n }
}

// WithProfiling mounts the pprof handlers at /debug/pprof/ when the binary
// was built with the pprof tag.
func WithProfiling(enable bool) Option {
	return func(c *config) { c.pprof = enable }
}

type server struct {
	config

	source   Source
	upgrader websocket.Upgrader
}

// New returns an HTTP handler that evaluates view contexts against the
// evaluator provided by source.
//
//	POST /v1/style     context object or array -> style object or array
//	GET  /v1/program   the compiled program as JSON
//	GET  /v1/healthz   service status and the last reload error
//	GET  /v1/stream    websocket; each message is handled like /v1/style
func New(source Source, opts ...Option) http.Handler {
	s := &server{
		config: config{maxBody: DefaultMaxBody},
		source: source,
	}

	for _, opt := range opts {
		opt(&s.config)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	if len(s.origins) > 0 {
		s.upgrader.CheckOrigin = s.checkOrigin
	}

	r := mux.NewRouter()

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/style", s.handleStyle).Methods(http.MethodPost)
	v1.HandleFunc("/program", s.handleProgram).Methods(http.MethodGet)
	v1.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	if h := profile.Handler(); s.pprof && h != nil {
		r.PathPrefix("/debug/pprof/").Handler(h)
	}

	var h http.Handler = r

	if len(s.origins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.origins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}

	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
	)(h)

	return handlers.CombinedLoggingHandler(
		s.logger.Writer(log.LevelInfo, slog.String("component", "http")), h)
}

func (s *server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	return origin == "" || slices.Contains(s.origins, "*") ||
		slices.Contains(s.origins, origin)
}

func (s *server) handleStyle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	if int64(len(body)) > s.maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge)

		return
	}

	out, err := s.evaluate(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleProgram(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Evaluator().Program())
}

type health struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := health{OK: true, Version: pkg.Version()}

	if err := s.source.LastError(); err != nil {
		h.OK = false
		h.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, h)
}

// evaluate applies the current evaluator to the contexts in body. A single
// object yields a single style; an array yields an array.
func (s *server) evaluate(ctx context.Context, body []byte) (any, error) {
	contexts, err := lang.DecodeContexts(ctx, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	e := s.source.Evaluator()

	styles := make([]lang.ViewStyle, len(contexts))
	for i, c := range contexts {
		styles[i] = e.Apply(c)
	}

	if isArray(body) {
		return styles, nil
	}

	if len(styles) == 0 {
		return nil, lang.ErrInvalidContext.With(slog.String("reason", "empty body"))
	}

	return styles[0], nil
}

func isArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)

	return len(trimmed) > 0 && trimmed[0] == '['
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	data, _ := json.Marshal(errorResponse{Error: err.Error()})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// recoveryLogger adapts a Logger to handlers.RecoveryHandlerLogger.
type recoveryLogger struct{ log.Logger }

func (l recoveryLogger) Println(v ...any) {
	attrs := make([]slog.Attr, 0, len(v))
	for _, x := range v {
		attrs = append(attrs, slog.Any("panic", x))
	}

	l.Error("handler panic", attrs...)
}

// ListenAndServe serves h on addr until ctx is done, then shuts down,
// waiting up to grace for active requests.
func ListenAndServe(
	ctx context.Context,
	addr string,
	h http.Handler,
	grace time.Duration,
) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)

	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err

	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	err := srv.Shutdown(sctx)

	if serr := <-errc; !errors.Is(serr, http.ErrServerClosed) {
		return errors.Join(err, serr)
	}

	return err
}
