// Package logging provides the glog.Logger used across the service,
// backed by a log/slog JSON handler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// LevelTrace sits below slog's debug level.
const LevelTrace = slog.Level(-8)

type Logger struct {
	name string
	s    *slog.Logger
	ctx  context.Context
}

var _ glog.Logger = (*Logger)(nil)

// New returns a logger writing JSON lines to w at the given level
// ("trace", "debug", "info", "warn", "error").
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{s: slog.New(h), ctx: context.Background()}
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
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

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(name string) glog.Logger {
	return &Logger{name: name, s: l.s.With("logger", name), ctx: l.ctx}
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{name: l.name, s: l.s.With(args...), ctx: l.ctx}
}

func (l *Logger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Logger{name: l.name, s: l.s, ctx: ctx}
}

func (l *Logger) Trace(msg string, args ...any) { l.s.Log(l.ctx, LevelTrace, msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.s.Log(l.ctx, slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.s.Log(l.ctx, slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.s.Log(l.ctx, slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.s.Log(l.ctx, slog.LevelError, msg, args...) }

func (l *Logger) Fatal(msg string, args ...any) {
	l.s.Log(l.ctx, slog.LevelError, msg, args...)
	os.Exit(1)
}

// Named tags logger with a component name when it supports it.
func Named(logger glog.Logger, name string) glog.Logger {
	logger = glog.Ensure(logger)
	if l, ok := logger.(*Logger); ok {
		return l.Named(name)
	}
	return logger
}
