package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// New returns the process logger: JSON to stdout, debug level for local and
// dev environments.
func New(appEnv string) *slog.Logger {
	return NewWithWriter(os.Stdout, appEnv)
}

func NewWithWriter(w io.Writer, appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "local" || appEnv == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "sales-crm", "env", appEnv)
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
