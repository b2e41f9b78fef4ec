// Package logging builds the process logger
// The terminal owns stdout and stderr while the show runs, so logs only ever go to a
// rotating file, and nowhere unless debug is on.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Debug      bool
	Level      zerolog.Level
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the root logger and the closer of its file
func New(opts Options) (zerolog.Logger, io.Closer) {
	if !opts.Debug || opts.File == "" {
		return zerolog.Nop(), nopCloser{}
	}

	w := &lj.Logger{
		Filename:   opts.File,
		MaxSize:    max(opts.MaxSizeMB, 1),
		MaxBackups: opts.MaxBackups,
		MaxAge:     28,
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(w).
		Level(opts.Level).
		With().
		Timestamp().
		Str("app", "fireworks").
		Logger()
	return logger, w
}

// Component tags l with a component field
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
