package logging

import (
	"os"
	"time"

	"github.com/pngtap/pngtap/src/config"
	"github.com/pngtap/pngtap/src/oops"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	zerolog.SetGlobalLevel(config.Config.LogLevel)
}

// SetLevel adjusts the global log level after flag parsing.
func SetLevel(level zerolog.Level) {
	config.Config.LogLevel = level
	zerolog.SetGlobalLevel(level)
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}
