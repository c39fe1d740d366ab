package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on stderr so diagnostics stay out of the
// progress output on stdout. Level should be DEBUG, INFO, WARN or ERROR;
// unrecognized values default to INFO.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}

// Discard drops everything. Components fall back to it when no logger is
// injected.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
