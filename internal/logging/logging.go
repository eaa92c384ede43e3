package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BrandonDHaskell/scanlog/internal/config"
)

// New builds the process logger. prod gets JSON lines, everything else the
// text handler. Timestamps are rendered in loc with cfg.TimeFormat.
func New(env string, cfg config.LogConfig, loc *time.Location) *slog.Logger {
	return NewWithWriter(os.Stdout, env, cfg, loc)
}

func NewWithWriter(w io.Writer, env string, cfg config.LogConfig, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.Local
	}
	format := cfg.TimeFormat
	if format == "" {
		format = time.RFC3339
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.In(loc).Format(format))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard is a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
