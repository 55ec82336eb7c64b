// Package logging builds the process logger: a leveled, multi-line safe
// text logger writing to the console, a timestamped file, both, or nowhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options selects where and at which level the logger writes.
type Options struct {
	// Name appears in the log file name.
	Name     string
	ToScreen bool
	ToFile   bool
	Level    slog.Level
	// Dir receives the log file. Defaults to the working directory.
	Dir string
	// Screen is the console stream. Defaults to os.Stdout.
	Screen io.Writer
	// Now is used for the file name timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Logger owns the slog.Logger and any file it writes to. Create it on
// startup and Close it on shutdown.
type Logger struct {
	logger *slog.Logger
	file   *os.File
	path   string
}

// New creates a Logger. With neither sink enabled every record is discarded.
func New(opts Options) (*Logger, error) {
	var sinks []io.Writer
	l := &Logger{}

	if opts.ToScreen {
		screen := opts.Screen
		if screen == nil {
			screen = os.Stdout
		}
		sinks = append(sinks, screen)
	}

	if opts.ToFile {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		name := opts.Name
		if name == "" {
			name = "lossgrid"
		}
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		l.path = filepath.Join(dir, fmt.Sprintf("%s_%s.log", now().Format("20060102-150405"), name))
		f, err := os.Create(l.path)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		sinks = append(sinks, f)
	}

	switch len(sinks) {
	case 0:
		l.logger = slog.New(slog.DiscardHandler)
	case 1:
		l.logger = slog.New(NewHandler(sinks[0], opts.Level))
	default:
		l.logger = slog.New(NewHandler(io.MultiWriter(sinks...), opts.Level))
	}
	return l, nil
}

// Slog returns the underlying logger. A nil Logger yields a discarding logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil || l.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.logger
}

// Path returns the log file path, or "" when not logging to a file.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Sync()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: want debug, info, warn or error", s)
	}
	return lvl, nil
}
