package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelTrace sits below slog's debug level. The quadrature logs each panel
// it bisects or settles at this level.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return slog.LevelError
	case "WARN":
		return slog.LevelWarn
	case "DEBUG":
		return slog.LevelDebug
	case "TRACE":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a colorized leveled logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					return slog.String(slog.LevelKey, "TRC")
				}
			}
			return a
		},
	}))
}

// NewDefaultLogger creates a stderr logger based on the LOG_LEVEL environment variable.
func NewDefaultLogger() *slog.Logger {
	return NewLogger(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// DefaultLogger is the process-wide logger.
var DefaultLogger = NewDefaultLogger()
