// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/patientchart/vitals/internal/config"
)

// Setup configures the global logger from cfg and returns it.
// Unknown levels fall back to info.
func Setup(cfg config.LogConfig) zerolog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter is Setup with an explicit output, used by tests.
func SetupWithWriter(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).With().Timestamp().Str("service", "patientchart").Logger()
	log.Logger = logger
	return logger
}
