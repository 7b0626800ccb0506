package slogutil

import (
	"io"
	"log/slog"
	"os"
)

// Options describes the process logger assembled by the CLI.
type Options struct {
	// Format is "human" (default) or "json".
	Format string
	// Level is the minimum level written to the console.
	Level slog.Level
	// Console receives console output; defaults to os.Stderr.
	Console io.Writer
	// File, when set, additionally receives every record at FileLevel.
	File       string
	FileLevel  slog.Level
	MaxSize    string
	MaxBackups int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the logger described by opts. The closer must be closed when
// the process is done logging; it is a no-op when no file was requested.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleHandler slog.Handler
	if opts.Format == "json" {
		consoleHandler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: opts.Level})
	} else {
		consoleHandler = NewHandler(console, &slog.HandlerOptions{Level: opts.Level})
	}

	if opts.File == "" {
		return slog.New(consoleHandler), nopCloser{}, nil
	}

	rf, err := OpenRotatingFile(opts.File, ParseSize(opts.MaxSize), opts.MaxBackups)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := NewHandler(rf, &slog.HandlerOptions{Level: opts.FileLevel})
	return slog.New(NewTeeHandler(consoleHandler, fileHandler)), rf, nil
}
