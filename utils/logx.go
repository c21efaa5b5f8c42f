package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global zerolog logger.
// Development: debug level, console output on stderr.
// Otherwise: info level, JSON lines written to out (stdout when nil).
func InitGlobalLogger(isDevelopment bool, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if out == nil {
		out = os.Stdout
	}

	level := zerolog.InfoLevel
	if isDevelopment {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
}

// emit writes one event with key/value fields. An odd-length field list is
// dropped with a warning since zerolog would panic on it.
func emit(ev *zerolog.Event, msg string, fields []any) {
	if len(fields)%2 != 0 {
		log.Warn().Int("fields_count", len(fields)).Msgf("odd number of log fields for %q, fields ignored", msg)
		fields = nil
	}
	ev.Fields(fields).CallerSkipFrame(2).Msg(msg)
}

func Debug(msg string, fields ...any) {
	emit(log.Debug(), msg, fields)
}

func Info(msg string, fields ...any) {
	emit(log.Info(), msg, fields)
}

func Warn(msg string, fields ...any) {
	emit(log.Warn(), msg, fields)
}

// Error logs err at error level with the given message and key/value fields.
func Error(err error, msg string, fields ...any) {
	emit(log.Error().Err(err), msg, fields)
}
