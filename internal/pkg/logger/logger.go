// Package logger exposes the process-wide zerolog logger behind a small
// package-level API. Call sites log through Debug/Info/Warn/Error; Configure
// is invoked once at startup with the loaded logging config and rebinds the
// global logger, so an import is all a package needs.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a log level as it appears in config files
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config controls the global logger. A nil Output means os.Stdout; Pretty
// switches from JSON lines to zerolog's console writer.
type Config struct {
	Level  LogLevel
	Pretty bool
	Output io.Writer
}

var root zerolog.Logger

func init() {
	Configure(Config{Level: InfoLevel, Pretty: true})
}

// Configure rebuilds the global logger from cfg. Unrecognized levels fall
// back to info rather than failing startup.
func Configure(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	root = zerolog.New(out).With().Timestamp().Logger()
	log.Logger = root
}

func parseLevel(level LogLevel) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug starts a debug-level event on the global logger
func Debug() *zerolog.Event {
	return root.Debug()
}

// Info starts an info-level event on the global logger
func Info() *zerolog.Event {
	return root.Info()
}

// Warn starts a warn-level event on the global logger
func Warn() *zerolog.Event {
	return root.Warn()
}

// Error starts an error-level event on the global logger
func Error() *zerolog.Event {
	return root.Error()
}
