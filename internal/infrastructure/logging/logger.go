package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/config"
)

// Logger is the controller-wide structured logger. It embeds
// *slog.Logger, so the usual Debug/Info/Warn/Error methods are
// available directly and safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging configuration. Every record
// carries service and version fields so interleaved logs from several
// controllers remain attributable.
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(cfg, version, writerFor(cfg.Output))
}

// NewWithWriter is New with an explicit output destination. The
// configured output setting is ignored.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "kilnlogic"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// Default is the bootstrap logger used before configuration loads:
// JSON to stdout at info level, version "dev".
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// With returns a child logger carrying additional default attributes.
//
//	kilnLog := log.With("kiln", kilnID)
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps a configured level name to its slog level.
// Unrecognised names fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
