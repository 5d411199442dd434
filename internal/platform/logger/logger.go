package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the application logger. JSON output so log aggregation gets
// structured fields; level comes from config so local runs can turn on debug.
func New(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// NewNop returns a logger that discards everything. Intended for tests and
// for services constructed without an explicit logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
