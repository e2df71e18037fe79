package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler, bound to the renderer of
// the output so that colors are dropped when it is not a terminal.
type palette struct {
	key, str, num, time, null lipgloss.Style
	yes, no                   lipgloss.Style
	levels                    map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		time: fg("4"),
		null: fg("8"),
		yes:  fg("2"),
		no:   fg("1"),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.Level(LevelDebug): fg("4"),
			slog.Level(LevelInfo):  fg("2").Bold(true),
			slog.Level(LevelWarn):  fg("3").Bold(true),
			slog.Level(LevelError): fg("1").Bold(true),
		},
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	for _, at := range []slog.Level{
		slog.Level(LevelError),
		slog.Level(LevelWarn),
		slog.Level(LevelInfo),
		slog.Level(LevelDebug),
	} {
		if l >= at {
			return p.levels[at]
		}
	}

	return p.levels[slog.Level(LevelTrace)]
}

// prettyHandler writes colorized records, one "key=value" line per record
// for FormatText or an indented object per record for FormatJSON.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	colors *palette
	attrs  []slog.Attr // preformatted via WithAttrs, group-qualified
	groups []string
	format Format
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, format Format) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		colors: newPalette(w),
		format: format,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// qualify nests attrs inside the handler's open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	for i := len(h.groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(attrs...)}}
	}

	return attrs
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	fields = append(fields, h.qualify(own)...)

	buf := new(bytes.Buffer)

	first := true

	if h.format == FormatJSON {
		buf.WriteString("{")
	}

	for _, a := range fields {
		// Levels keep their slog.Level value so they can be colored.
		if h.opts.ReplaceAttr != nil && a.Key != slog.LevelKey &&
			a.Value.Kind() != slog.KindGroup {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Equal(slog.Attr{}) {
			continue
		}

		h.writeAttr(buf, "", a, &first)
	}

	if h.format == FormatJSON {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr, first *bool) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range group {
			h.writeAttr(buf, prefix, ga, first)
		}

		return
	}

	switch {
	case h.format == FormatJSON && *first:
		buf.WriteString("\n  ")

	case h.format == FormatJSON:
		buf.WriteString(",\n  ")

	case !*first:
		buf.WriteByte(' ')
	}

	*first = false

	if h.format == FormatJSON {
		buf.WriteString(h.colors.key.Render(strconv.Quote(prefix+a.Key)) + ": ")
	} else {
		buf.WriteString(h.colors.key.Render(prefix+a.Key) + "=")
	}

	buf.WriteString(h.value(a.Value))
}

func (h *prettyHandler) value(v slog.Value) string {
	quote := func(s string) string {
		if h.format == FormatJSON {
			return strconv.Quote(s)
		}

		return s
	}

	switch v.Kind() {
	case slog.KindString:
		return h.colors.str.Render(quote(v.String()))

	case slog.KindInt64:
		return h.colors.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.colors.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.colors.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.colors.yes.Render("true")
		}

		return h.colors.no.Render("false")

	case slog.KindDuration:
		return h.colors.num.Render(quote(v.Duration().String()))

	case slog.KindTime:
		return h.colors.time.Render(quote(v.Time().Format(time.RFC3339)))
	}

	switch val := v.Any().(type) {
	case nil:
		return h.colors.null.Render("null")

	case slog.Level:
		return h.colors.level(val).Render(quote(strings.ToUpper(Level(val).String())))

	case error:
		return h.colors.no.Render(quote(val.Error()))

	default:
		if h.format == FormatJSON {
			if data, err := json.Marshal(val); err == nil {
				return h.colors.str.Render(string(data))
			}
		}

		return h.colors.str.Render(quote(v.String()))
	}
}
