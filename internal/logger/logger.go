// Package logger builds the zerolog logger shared by the server and its middleware.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/programmernewbie/multimodule-template/internal/config"
)

// New creates a logger writing to stderr
func New(cfg config.LogConfig, service string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, cfg, service)
}

// NewWithWriter creates a logger writing to w. Console format is meant for local development.
func NewWithWriter(w io.Writer, cfg config.LogConfig, service string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if cfg.Format == config.LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger(), nil
}
