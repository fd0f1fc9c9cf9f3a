// Package logging builds the application's zerolog loggers and carries
// them through context.Context so every component logs with consistent
// fields.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Format selects the log output encoding.
const (
	// FormatAuto uses console output on a terminal, JSON otherwise.
	FormatAuto = "auto"

	// FormatConsole forces human-readable console output.
	FormatConsole = "console"

	// FormatJSON forces structured JSON output.
	FormatJSON = "json"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Invalid values fall back to info.
	Level string

	// Format is one of FormatAuto, FormatConsole, FormatJSON.
	Format string

	// File, when non-empty, appends JSON logs to the given path in
	// addition to the primary writer.
	File string
}

// Result holds the constructed logger and the optional file handle so
// the caller can close it on shutdown.
type Result struct {
	Logger zerolog.Logger

	file *os.File
}

// Close releases the log file handle if one was opened.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// New constructs a logger from cfg. The primary writer is stderr,
// rendered through a console writer when the format resolves to
// console. An invalid level falls back to info rather than failing.
func New(cfg Config) (Result, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer

	format := cfg.Format
	if format == "" || format == FormatAuto {
		if isTerminal(os.Stderr) {
			format = FormatConsole
		} else {
			format = FormatJSON
		}
	}

	switch format {
	case FormatConsole:
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	case FormatJSON:
		writers = append(writers, os.Stderr)
	default:
		return Result{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var file *os.File
	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return Result{}, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		writers = append(writers, file)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return Result{Logger: logger, file: file}, nil
}

// ComponentLogger returns a child logger tagged with a component field.
func ComponentLogger(base zerolog.Logger, component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
