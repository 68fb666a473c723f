package log

import (
	"io"
	"os"

	"limitbook/internal/config"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// NewLogger returns the process logger; every line carries service=limitbook.
func NewLogger(cfg config.Config) Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.Config, out io.Writer) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "limitbook").Logger()
}

// Component derives a child logger tagged with the emitting component.
func Component(l Logger, name string) Logger {
	return l.With().Str("component", name).Logger()
}

// Nop discards everything; for tests.
func Nop() Logger { return zerolog.Nop() }
