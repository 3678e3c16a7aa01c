package logger

import (
	"ble-locate/internal/config/components"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"os"
	"strings"
	"time"
)

// NewLogger installs the process-wide logger from LOG_LEVEL and LOG_FORMAT. It must run
// before any GetLogger call, since component loggers copy the global one.
func NewLogger(cfg components.LoggerConfigImpl) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "fatal":
		level = zerolog.FatalLevel
	}

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
		log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	return log.Logger
}

// GetLogger tags every line with a component name. Names are kebab-case and follow the
// pipeline stage or transport they belong to, e.g. "locate-service", "mq-sink", "viewer-hub".
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
