package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, service)
}

// NewWithWriter is New with an explicit destination; planctl logs its diff
// to stderr so stdout stays free for the summary.
func NewWithWriter(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
