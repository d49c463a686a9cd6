// Package logging configures the zerolog loggers used across stacksorbit.
// Console output goes to stderr in human-readable form; when file logging
// is enabled a structured JSON copy is written under the logs directory so
// deployment runs remain auditable after the fact.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDir is the directory log files are written to, relative to the
// project root.
const DefaultDir = "logs"

// New returns a console logger writing to stderr. Verbose enables debug
// level; otherwise the level is info.
func New(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// NewWithFile returns a logger that writes human-readable output to stderr
// and structured JSON to a timestamped file under dir. The returned close
// function flushes and closes the file; it is safe to call even when the
// logger is no longer used.
func NewWithFile(verbose bool, dir string) (zerolog.Logger, func() error, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: create log dir: %w", err)
	}

	name := fmt.Sprintf("deployment_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	multi := zerolog.MultiLevelWriter(console, f)
	logger := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	return logger, f.Close, nil
}

// Sub returns a child logger tagged with a component name, so log lines
// from different packages stay grep-able.
func Sub(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
