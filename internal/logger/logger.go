// Package logger builds the process-wide slog.Logger from configuration.
// Two backends are supported: the standard library text/JSON handlers and
// zap, bridged through slog-zap.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Backend selects the slog handler implementation.
type Backend string

const (
	BackendStd Backend = "std"
	BackendZap Backend = "zap"
)

// Config controls logger construction.
type Config struct {
	Level   string  // debug|info|warn|error
	Backend Backend // std|zap
	Format  string  // text|json, std backend only
	Service string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// New returns a logger for cfg and installs it as the slog default.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Service == "" {
		cfg.Service = "roomchat"
	}

	level := ParseLevel(cfg.Level)

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(cfg.Output, level)
	default:
		h = newStdHandler(cfg.Output, level, cfg.Format)
	}

	log := slog.New(h).With("service", cfg.Service)
	slog.SetDefault(log)
	return log
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
