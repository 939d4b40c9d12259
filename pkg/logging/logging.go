// Package logging builds the process logger: JSON lines on stderr, teed to a
// file when one is configured.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a config value to a slog level. Unknown values are an
// error; the empty string means info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", raw)
}

// Logger owns the level and the optional log file.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar
	file  *os.File
}

// New creates a JSON logger writing to w, and to path when path is set.
// Parent directories of path are created. If the file cannot be opened the
// logger falls back to w alone and says so.
func New(w io.Writer, level, path string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := &Logger{Level: &slog.LevelVar{}}
	l.Level.Set(lvl)

	out := w
	var fileErr error
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fileErr = err
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			fileErr = err
		} else {
			l.file = f
			out = io.MultiWriter(w, f)
		}
	}
	l.Logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: l.Level}))
	if fileErr != nil {
		l.Warn("log file unavailable, logging to stderr only", "path", path, "error", fileErr)
	}
	return l, nil
}

// Default logs info and above to stderr.
func Default() *Logger {
	l, _ := New(os.Stderr, "info", "")
	return l
}

// Discard drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
