package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fadedpez/tucoblackjack/internal/types"
)

// Level represents a logging level
type Level = log.Level

const (
	DEBUG = log.DebugLevel
	INFO  = log.InfoLevel
	WARN  = log.WarnLevel
	ERROR = log.ErrorLevel
)

// Logger is a leveled, structured logger scoped to a component
type Logger struct {
	*log.Logger
}

// NewLogger creates a new logger writing to stdout at the given level
func NewLogger(level Level) *Logger {
	return New(os.Stdout, level)
}

// New creates a logger writing to w
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		Logger: log.NewWithOptions(w, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      "2006-01-02 15:04:05.000",
		}),
	}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return &Logger{Logger: log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})}
}

// ParseLevel converts "debug", "info", "warn" or "error" into a Level, defaulting to INFO
func ParseLevel(s string) Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return INFO
	}
	return level
}

// WithComponent returns a child logger prefixed with the component name
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.WithPrefix(strings.ToUpper(name))}
}

// With returns a child logger that always includes the given key/value pairs
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}

// LogError logs a GameError with appropriate context
func (l *Logger) LogError(err error, keyvals ...interface{}) {
	if gameErr, ok := types.AsGameError(err); ok {
		kv := append([]interface{}{"code", gameErr.Code}, keyvals...)
		if gameErr.Err != nil {
			kv = append(kv, "cause", gameErr.Err)
		}
		l.Error(gameErr.Message, kv...)
		return
	}
	l.Error("unexpected error", append([]interface{}{"err", err}, keyvals...)...)
}

// Default logger instance
var Default = NewLogger(INFO)

// OrDefault returns l, or Default when l is nil
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Default
	}
	return l
}
