// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script compiled", slog.Int("maps", 3))
//	logger.Error("reload failed", slog.Any("error", err))
//
// Methods take only [slog.Attr] arguments, never alternating key/value
// pairs. The zero [Logger] discards all messages.
//
// # Configuration
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with different options. The package-level
// functions ([Info], [Warn], ...) use a default logger that [Config]
// reconfigures.
//
// # Levels
//
// Besides the slog levels the package defines [LevelTrace], below
// [LevelDebug], for per-token and per-statement parser output.
//
// # Output
//
// [FormatText] writes key=value lines and [FormatJSON] writes one object per
// message. With [WithPretty] both are colorized when the output is a
// terminal.
package log
