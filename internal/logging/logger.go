// Package logging configures zerolog for the bicache CLI and server and
// provides context plumbing so every component logs through the same
// structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Format constants for the logging configuration.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum log level ("trace".."panic"). Invalid values
	// fall back to "info".
	Level string

	// Format selects console (human-readable) or json output.
	Format string

	// File, when non-empty, appends logs to the given path in addition to
	// stderr.
	File string
}

// Result holds the constructed logger plus the file handle that must be
// closed when the process shuts down.
type Result struct {
	Logger    zerolog.Logger
	UsingFile bool
	FilePath  string

	file *os.File
}

// Close releases the log file handle if one was opened.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a zerolog.Logger from the given configuration.
// The returned Result owns the log file handle; callers are responsible for
// calling Close once logging is finished.
func NewLogger(cfg Config) (*Result, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Format == FormatJSON {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	result := &Result{}
	if cfg.File != "" {
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", cfg.File, openErr)
		}
		result.file = f
		result.UsingFile = true
		result.FilePath = cfg.File
		writers = append(writers, f)
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return result, nil
}

// ComponentLogger returns a child logger tagged with the given component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
