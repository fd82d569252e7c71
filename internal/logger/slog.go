package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New builds the process logger. format is "text" or "json".
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return slog.LevelDebug - 1, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NativeLogger lets the native shell write into the bridge log with plain
// string messages.
type NativeLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

func NewNative(ctx context.Context, logger *slog.Logger) *NativeLogger {
	return &NativeLogger{
		ctx:    ctx,
		logger: logger.With("source", "native"),
	}
}

func (l *NativeLogger) Print(message string) {
	l.logger.Log(l.ctx, slog.LevelInfo, message)
}

func (l *NativeLogger) Trace(message string) {
	l.logger.Log(l.ctx, slog.LevelDebug-1, message)
}

func (l *NativeLogger) Debug(message string) {
	l.logger.DebugContext(l.ctx, message)
}

func (l *NativeLogger) Info(message string) {
	l.logger.InfoContext(l.ctx, message)
}

func (l *NativeLogger) Warning(message string) {
	l.logger.WarnContext(l.ctx, message)
}

func (l *NativeLogger) Error(message string) {
	l.logger.ErrorContext(l.ctx, message)
}
