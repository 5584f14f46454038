// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/httplog/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	App     string
	Version string
	Env     string
	Level   string

	// File enables a size-rotated copy of the log when non-empty.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a JSON logger using the ECS field names of httplog, plus a
// closer for the rotated log file (a no-op without one).
func New(opts Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	return newWithWriter(out, opts), closer
}

func newWithWriter(w io.Writer, opts Options) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.App),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)
}

// ParseLevel maps debug, info, warn and error to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
