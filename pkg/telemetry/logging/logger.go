// Package logging configures structured logging for a Tulpa host.
//
// All components log through log/slog; this package builds the handler
// from configuration and installs it as the process default, so
// component constructors that default to slog.Default() pick it up.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"anima-hq/tulpa/pkg/config"
)

// Setup builds a logger from the configuration and installs it as the
// slog default. It returns the logger for direct use.
func Setup(cfg *config.LoggingConfig) *slog.Logger {
	return SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit output writer, used by tests.
func SetupWriter(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		// "text" and "console" both use the text handler; console is
		// kept as a config value for forward compatibility.
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
