// Package debug configures the process-wide slog logger for --debug and
// --log-file. The SDK reads the level from the logger it is handed.
package debug

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults.
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// LoggerOptions controls SetupLogger.
type LoggerOptions struct {
	Debug bool
	// Stderr receives log lines; nil means os.Stderr.
	Stderr io.Writer
	// File, when set, also sends log lines to a size-rotated file.
	File string
}

// SetupLogger configures the default slog logger and returns a closer for
// the log file (a no-op closer when no file is configured).
func SetupLogger(opts LoggerOptions) io.Closer {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if opts.Stderr != nil {
		out = opts.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAgeDays,
		}
		out = io.MultiWriter(out, rotating)
		closer = rotating
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
