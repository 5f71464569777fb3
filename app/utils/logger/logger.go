// Package logger wraps log/slog with a request-scoped logger. Middleware
// stores a logger tagged with the request id in the context and handlers
// fetch it back with FromCtx.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// Setup installs the process-wide default logger: JSON for production,
// text otherwise.
func Setup(production bool) *slog.Logger {
	return SetupWriter(os.Stdout, production)
}

func SetupWriter(w io.Writer, production bool) *slog.Logger {
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// FromCtx returns the request logger stored in ctx, or the default logger.
func FromCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
