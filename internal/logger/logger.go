// Package logger provides a slog factory with environment presets and a small
// set of attribute helpers used across the service.
package logger

import (
	"io"
	"log/slog"
	"os"
)

type config struct {
	level   slog.Level
	json    bool
	output  io.Writer
	attrs   []slog.Attr
	appName string
}

// Option configures the logger factory.
type Option func(*config)

// WithDevelopment configures text output at debug level.
func WithDevelopment(appName string) Option {
	return func(c *config) {
		c.appName = appName
		c.level = slog.LevelDebug
		c.json = false
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(appName string) Option {
	return func(c *config) {
		c.appName = appName
		c.level = slog.LevelInfo
		c.json = true
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithJSONFormatter forces JSON output.
func WithJSONFormatter() Option {
	return func(c *config) {
		c.json = true
	}
}

// WithOutput sets the log destination. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr attaches static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// New creates a logger from the given options.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(cfg.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	}

	attrs := cfg.attrs
	if cfg.appName != "" {
		attrs = append([]slog.Attr{slog.String("app", cfg.appName)}, attrs...)
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}

	return slog.New(h)
}

// SetAsDefault installs the logger as slog's process-wide default.
func SetAsDefault(log *slog.Logger) {
	slog.SetDefault(log)
}
