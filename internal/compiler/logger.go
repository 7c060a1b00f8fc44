package compiler

import (
	"log/slog"
	"os"
)

// Logger is the small logging surface internal/compiler needs: parse,
// per-pass timing and completion messages. Satisfied
// by a log/slog-backed default; tests can substitute a no-op.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct{ l *slog.Logger }

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }

// NewLogger builds the default Logger: text-handler slog writing to
// stderr, at debug level when debug is true and info level otherwise.
func NewLogger(debug bool) Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slogLogger{l: slog.New(h)}
}

// noopLogger discards everything; used where no Logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
