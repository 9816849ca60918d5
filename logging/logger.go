// ABOUTME: Configured zerolog loggers for every shaft component
// ABOUTME: Errors carry pkg/errors stacks when logged with .Stack()
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

var configureOnce sync.Once

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

func configure() {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// New returns a JSON logger writing to w, tagged with component.
// stdout is reserved for command output and the MCP transport, so
// callers normally pass os.Stderr or a log file.
func New(w io.Writer, component string, level zerolog.Level) zerolog.Logger {
	configureOnce.Do(configure)
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(level).
		With().
		Str("service", "shaft").
		Str("component", component).
		Timestamp().
		Logger()
}

// Console returns a human-readable logger for interactive commands.
func Console(component string, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, component, level)
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop discards everything; handy as a default in constructors and tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
