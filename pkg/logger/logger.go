// pkg/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the process-wide logger. Internal packages log through
// zerolog's global logger, which init points at the same console
// writer, so both paths produce identical output.
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
	log.Logger = Log
}

// SetLevel maps the server mode onto a log level: debug mode gets debug
// logs, release gets info. Anything else is parsed as a zerolog level
// name.
func SetLevel(mode string) {
	var level zerolog.Level
	switch mode {
	case "debug":
		level = zerolog.DebugLevel
	case "release":
		level = zerolog.InfoLevel
	default:
		var err error
		level, err = zerolog.ParseLevel(mode)
		if err != nil {
			Log.Warn().Str("mode", mode).Msg("unrecognized log mode, defaulting to info")
			level = zerolog.InfoLevel
		}
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}
