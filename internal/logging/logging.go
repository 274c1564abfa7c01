// Package logging builds the zerolog logger used across the importer.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Stage names attached to log events under the "stage" field.
const (
	StageMapping = "mapping"
	StageReader  = "reader"
	StageProcess = "process"
	StageSubmit  = "submit"
	StageReport  = "report"
)

// New returns a logger writing to w. format "console" gives human-readable
// output, anything else JSON lines. An unparseable level falls back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Stage returns a child logger tagged with stage.
func Stage(l zerolog.Logger, stage string) zerolog.Logger {
	return l.With().Str("stage", stage).Logger()
}
