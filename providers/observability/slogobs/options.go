package slogobs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option is a functional option for configuring the Observer.
type Option func(*config)

// config holds the configuration for creating an Observer.
type config struct {
	level  slog.Level
	output io.Writer
	json   bool
	logger *slog.Logger // If provided, use this logger directly
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithJSON switches the output format to JSON instead of logfmt text.
func WithJSON() Option {
	return func(c *config) {
		c.json = true
	}
}

// WithLogger uses an existing slog.Logger instead of building a handler.
// This option takes precedence over level/output/json options.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// GetLogLevelFromEnv reads the MAGO_LOG_LEVEL environment variable and maps it
// to a slog.Level. Unrecognized or empty values default to INFO.
func GetLogLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("MAGO_LOG_LEVEL")) {
	case "trace":
		return slog.LevelDebug - 4
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

func defaultConfig() *config {
	return &config{
		level:  GetLogLevelFromEnv(),
		output: os.Stdout,
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
