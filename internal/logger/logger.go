// Package logger wraps a process-wide zerolog logger for operational events.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(io.Discard)
)

// Init configures the global logger. format is "console" or "json"; w defaults to os.Stderr.
func Init(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return fmt.Errorf("invalid log level '%s'", level)
	}
	if w == nil {
		w = os.Stderr
	}

	var out io.Writer
	switch format {
	case "json":
		out = w
	case "console", "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("invalid log format '%s'", format)
	}

	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return nil
}

// L returns the current logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

// Debug starts a debug event
func Debug() *zerolog.Event {
	return L().Debug()
}

// Info starts an info event
func Info() *zerolog.Event {
	return L().Info()
}

// Warn starts a warning event
func Warn() *zerolog.Event {
	return L().Warn()
}

// Error starts an error event
func Error() *zerolog.Event {
	return L().Error()
}

// With returns a child logger carrying the given component name.
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}
