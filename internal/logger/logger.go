// Package logger provides a simple logging interface for rollout components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// verbose is flipped by --verbose; ROLLOUT_DEBUG has the same effect.
var verbose atomic.Bool

// SetVerbose enables or disables debug output for every env logger.
func SetVerbose(v bool) {
	verbose.Store(v)
}

func debugEnabled() bool {
	return verbose.Load() || os.Getenv("ROLLOUT_DEBUG") != ""
}

// envLogger implements Logger on top of a charm logger.
// Debug messages are only printed when ROLLOUT_DEBUG is set or verbose is on.
type envLogger struct {
	l *charmlog.Logger
}

// NewEnvLogger creates a stderr logger tagged with the given source name
// (e.g. "deploy" or "notify").
func NewEnvLogger(prefix string) Logger {
	return NewWriterLogger(os.Stderr, prefix)
}

// NewWriterLogger is NewEnvLogger with an explicit destination.
func NewWriterLogger(w io.Writer, prefix string) Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           charmlog.DebugLevel,
	})
	return &envLogger{l: l}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if debugEnabled() {
		l.l.Debugf(format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	l.l.Infof(format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	l.l.Warnf(format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	l.l.Errorf(format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "debug", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "info", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "warn", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "error", Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}
