// Package logging builds the zerolog logger shared by the container and the
// HTTP layer.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/config"
)

// New creates a logger writing to w (stderr when nil).
//
// Format "json" writes one JSON object per event; anything else uses the
// human-readable console writer. Unknown levels fall back to info.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}
