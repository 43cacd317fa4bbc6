package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys defined by this package,
// which prevents collisions with keys from other packages.
type contextKey int

// loggerKey is the context key under which a request-scoped logger is stored.
const loggerKey contextKey = iota

// WithLogger returns a copy of ctx carrying the given logger. Handlers and
// middleware use it to attach request-scoped attributes (trace ID, learner ID)
// so downstream code logs with them automatically.
// Panics if logger is nil: storing a nil logger would turn every downstream
// FromContext call into a latent nil dereference.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC: Enforcing required dependency
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the process default logger
// when ctx carries none. It never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, falling back to the
// provided default when ctx is nil or carries no logger. If the fallback is
// also nil, the process default logger is returned.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
