package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
)

// lineWriter logs each line written to it as one message.
type lineWriter struct {
	logger Logger
	level  Level
	attrs  []slog.Attr
	mu     sync.Mutex
	buf    bytes.Buffer
}

// Writer returns an [io.Writer] that logs each complete line written to it
// as a message at level, with attrs attached. It adapts line-oriented
// loggers such as HTTP access logs.
func (l Logger) Writer(level Level, attrs ...slog.Attr) io.Writer {
	return &lineWriter{logger: l, level: level, attrs: attrs}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)

	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Write(line)

			break
		}

		msg := string(bytes.TrimRight(line, "\r\n"))
		if msg != "" {
			w.logger.log(context.Background(), w.level, msg, w.attrs)
		}
	}

	return len(p), nil
}
