// Package logging configures colored structured logging with tint and
// provides the HTTP access-log middleware.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler on stderr as the default slog logger.
func Setup(level slog.Level, dev bool) {
	slog.SetDefault(New(os.Stderr, level, dev))
}

// New returns a tint logger writing to w. Colors and source locations are
// only used in development.
func New(w io.Writer, level slog.Level, dev bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  dev,
		NoColor:    !dev,
	}))
}

// LevelFromString maps debug, info, warn and error to a level. Anything
// else is info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
