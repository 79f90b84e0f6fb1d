// Package logging provides leveled logging for blueprint.
//
// The Logger supports DEBUG, INFO, WARN, and ERROR levels.
// Messages below the configured level are silently discarded.
// A Logger is safe for use from bubbletea commands running on
// their own goroutines.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents a log level
type Level int32

const (
	// LevelDebug is the debug log level
	LevelDebug Level = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warn log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string into a Level.
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging
type Logger struct {
	level     *atomic.Int32
	component string
	logger    *log.Logger
}

// New creates a new Logger with the specified level and output writer.
// If output is nil, os.Stderr is used.
func New(level Level, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	lvl := &atomic.Int32{}
	lvl.Store(int32(level))

	return &Logger{
		level:  lvl,
		logger: log.New(output, "", log.LstdFlags),
	}
}

// NewFromString creates a new Logger from a level string.
// If output is nil, os.Stderr is used.
func NewFromString(levelStr string, output io.Writer) *Logger {
	return New(ParseLevel(levelStr), output)
}

// Discard returns a Logger that drops every message.
func Discard() *Logger {
	return New(LevelError+1, io.Discard)
}

// Named returns a Logger that shares output and level with l and tags
// every message with the component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		level:     l.level,
		component: component,
		logger:    l.logger,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logAt(LevelDebug, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.logAt(LevelInfo, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logAt(LevelWarn, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.logAt(LevelError, format, v...)
}

func (l *Logger) logAt(level Level, format string, v ...interface{}) {
	if l == nil || l.GetLevel() > level {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if l.component != "" {
		l.logger.Printf("[%s] %s: %s", level.String(), l.component, msg)
		return
	}
	l.logger.Printf("[%s] %s", level.String(), msg)
}

// SetLevel changes the logger's level. Loggers derived with Named
// follow the change.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// GetLevel returns the logger's current level
func (l *Logger) GetLevel() Level {
	return Level(l.level.Load())
}
