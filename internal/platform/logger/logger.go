package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/recall-api/internal/config"
)

// parseLevel maps a configured level name to a slog.Level. The second return
// value reports whether the name was recognized; unrecognized names fall back
// to info.
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger writing to
// stdout with the configured log level and installs it as the default logger,
// so the slog package functions (slog.Info, slog.Error, ...) route through it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	level, ok := parseLevel(cfg.LogLevel)
	if !ok {
		// The JSON logger does not exist yet, so the warning goes through a
		// temporary text handler on stderr.
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}
