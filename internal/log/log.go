package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// Configure sets the global log level and output format.
// Level is one of trace, debug, info, warn, error; format is
// "console" or "json". Unknown values fall back to info/console.
func Configure(level, format string) {
	var out zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		out = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger = out.Level(lvl)
}

// fields attaches alternating key/value pairs to an event. A trailing
// key without a value is dropped.
func fields(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, ok := kv[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}

func Trace(msg string, kv ...any) { fields(logger.Trace(), kv).Msg(msg) }
func Debug(msg string, kv ...any) { fields(logger.Debug(), kv).Msg(msg) }
func Info(msg string, kv ...any)  { fields(logger.Info(), kv).Msg(msg) }
func Warn(msg string, kv ...any)  { fields(logger.Warn(), kv).Msg(msg) }
func Error(msg string, kv ...any) { fields(logger.Error(), kv).Msg(msg) }

// Fatal logs the message and exits with a non-zero status.
func Fatal(msg string, kv ...any) { fields(logger.Fatal(), kv).Msg(msg) }
