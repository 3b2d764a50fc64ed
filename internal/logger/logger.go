package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = map[Level]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
}

// Options configures the global logger.
type Options struct {
	Enabled bool
	Level   string
	File    string
	// Console also writes to stderr. Logs go to stderr when no file is set.
	Console bool
}

type state struct {
	level  Level
	logger *log.Logger
	closer io.Closer
}

var (
	mu     sync.RWMutex
	global *state
)

// Init configures the global logger. Messages logged before Init, or with
// logging disabled, are dropped.
func Init(opts Options) error {
	if !opts.Enabled {
		swap(nil)
		return nil
	}

	var writers []io.Writer
	var closer io.Closer
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	swap(&state{
		level:  ParseLevel(opts.Level),
		logger: log.New(io.MultiWriter(writers...), "", 0),
		closer: closer,
	})
	return nil
}

// SetOutput sends log lines at or above level to w.
func SetOutput(w io.Writer, level Level) {
	swap(&state{level: level, logger: log.New(w, "", 0)})
}

// Close releases the log file, if any, and disables logging.
func Close() error {
	return swap(nil)
}

func swap(next *state) error {
	mu.Lock()
	prev := global
	global = next
	mu.Unlock()

	if prev != nil && prev.closer != nil {
		return prev.closer.Close()
	}
	return nil
}

// ParseLevel maps a level name to a Level, defaulting to Info.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func logf(level Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil || level < global.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	global.logger.Printf("[%s] [%s] %s", ts, levelNames[level], fmt.Sprintf(format, args...))
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	logf(Debug, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logf(Info, format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	logf(Warn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logf(Error, format, args...)
}
