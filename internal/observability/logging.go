package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ServiceName is attached to every log record.
const ServiceName = "interview-coach"

// NewLogger builds the process logger. format is "text" or "json"; level is
// debug, info, warn or error (empty means info).
func NewLogger(out io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}

	return slog.New(handler.WithAttrs([]slog.Attr{slog.String("service", ServiceName)})), nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}
