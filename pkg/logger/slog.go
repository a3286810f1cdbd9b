package logger

import (
	"io"
	"log/slog"
	"strings"
)

// NewSlog builds the infrastructure logger used by the CLI, the browser
// drivers and the report collector. Production runs get JSON, everything else
// the text handler.
func NewSlog(w io.Writer, lvl string, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseSlogLevel(lvl),
	}

	var handler slog.Handler
	if strings.ToLower(environment) == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("environment", environment),
	)
}

// ParseSlogLevel maps config level names onto slog levels, defaulting to info.
func ParseSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
