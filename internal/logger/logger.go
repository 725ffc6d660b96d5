// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger and installs it as the fallback for
// zerolog.Ctx, so code running outside a request still logs somewhere.
// format "console" selects human-readable output; anything else is JSON.
// PRE: level is a zerolog level name or empty
// POST: Global level set; returns the root logger
func Setup(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
		}
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	if w == nil {
		w = os.Stdout
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &l
	return l, nil
}

// Component tags root with the subsystem name. Call it once per subsystem;
// zerolog does not deduplicate fields.
func Component(root zerolog.Logger, name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}
