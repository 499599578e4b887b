// Package logging is a thin context-carrying wrapper over log/slog: a
// component name is attached to a context.Context once via WithComponent,
// then every call site logs through that context without re-threading a
// *slog.Logger by hand.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

type componentKey struct{}

var base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetOutput redirects subsequent log records to w at the given level
// (the CLI's -v/--verbose flag lowers this to LevelDebug).
func SetOutput(w io.Writer, level slog.Level) {
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithComponent attaches component as a "component" attribute to every
// record logged through the returned context.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey{}, component)
}

func loggerFor(ctx context.Context) *slog.Logger {
	if component, ok := ctx.Value(componentKey{}).(string); ok {
		return base.With(slog.String("component", component))
	}
	return base
}

// Debug logs msg at LevelDebug with attrs, using the component recorded
// in ctx (if any).
func Debug(ctx context.Context, msg string, attrs ...any) {
	loggerFor(ctx).Debug(msg, attrs...)
}

// Info logs msg at LevelInfo.
func Info(ctx context.Context, msg string, attrs ...any) {
	loggerFor(ctx).Info(msg, attrs...)
}

// Warn logs msg at LevelWarn.
func Warn(ctx context.Context, msg string, attrs ...any) {
	loggerFor(ctx).Warn(msg, attrs...)
}

// Error logs msg at LevelError.
func Error(ctx context.Context, msg string, attrs ...any) {
	loggerFor(ctx).Error(msg, attrs...)
}

// LogDuration logs msg at level with a "duration_ms" attribute computed
// from start, plus any extra attrs.
func LogDuration(ctx context.Context, level slog.Level, msg string, start time.Time, attrs ...any) {
	all := append([]any{slog.Int64("duration_ms", time.Since(start).Milliseconds())}, attrs...)
	loggerFor(ctx).Log(ctx, level, msg, all...)
}
