package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the application logger writing human-readable output to w.
// verbose forces debug level; an unparseable level falls back to warn.
func NewLogger(level string, verbose bool, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    !colorOutput(w),
	}

	return zerolog.New(console).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// colorOutput reports whether w is a writer that should receive ANSI colours
func colorOutput(w io.Writer) bool {
	type fder interface{ Fd() uintptr }
	_, ok := w.(fder)
	return ok
}
