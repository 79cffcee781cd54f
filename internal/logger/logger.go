// Package logger provides configured zerolog loggers.
package logger

import (
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns the JSON logger used by long-running services such as the dev
// backend. Call sites should use .Stack() on error events to include stacks.
func New(serviceName string) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, serviceName string) zerolog.Logger {
	// Marshal pkg/errors stacks, attaching one to plain errors when .Stack() is used.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	return zerolog.New(w).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// InitConsole points the global logger at a plain-text stderr writer for CLI
// use and sets the global level.
func InitConsole(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	})
	zerolog.SetGlobalLevel(level)
	return log.Logger
}
