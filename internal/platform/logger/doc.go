// Package logger configures the process-wide slog JSON logger, propagates
// request-scoped loggers through contexts, and supplies the in-memory log
// capture helpers the test suites assert against.
package logger
