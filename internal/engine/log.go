package engine

import (
	"os"

	"github.com/rs/zerolog"
)

// logger emits cold-path diagnostics only (registration, calibration,
// index overflow). It is disabled unless the HOTSPAN_LOG environment
// variable names a level ("debug", "info", "warn", ...), so the library
// is silent by default and nothing ever logs from the hot path.
var logger = newLogger()

func newLogger() zerolog.Logger {
	lvl := os.Getenv("HOTSPAN_LOG")
	if lvl == "" {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(lvl)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("component", "hotspan").
		Logger()
}
