package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Init sets up a minimal console logger so that startup code can log before
// the environment is known. InitStructured replaces it once APP_ENV is read.
func Init() {
	zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Info logs a printf-style message at info level. Wiring code uses this;
// request-path code should use GetLogger() with structured fields instead.
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Error logs a printf-style message at error level.
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}

// Fatal logs a printf-style message at fatal level and exits.
func Fatal(format string, args ...interface{}) {
	zlog.Fatal().Msgf(format, args...)
}
