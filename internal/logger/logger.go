package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the logging level
type Level int

const (
	// ErrorLevel logs only errors
	ErrorLevel Level = iota
	// WarnLevel logs errors and warnings, such as retried cm commands
	WarnLevel
	// InfoLevel logs errors, warnings and info messages
	InfoLevel
	// DebugLevel logs everything including debug messages
	DebugLevel
)

const (
	// EnvVerbose enables debug logging when set to any non-empty value
	EnvVerbose = "CMRUNNER_VERBOSE"
	// EnvLogLevel selects a level by name (error, warn, info, debug)
	EnvLogLevel = "CMRUNNER_LOG_LEVEL"
)

// Logger provides structured logging functionality on top of zerolog
type Logger struct {
	level  Level
	output io.Writer
	zl     zerolog.Logger
}

// New creates a new logger with the specified level
func New(level Level) *Logger {
	l := &Logger{level: level}
	l.SetOutput(os.Stderr)
	return l
}

// NewFromEnv creates a logger based on environment variables
func NewFromEnv() *Logger {
	level := WarnLevel
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if os.Getenv(EnvVerbose) != "" {
		level = DebugLevel
	}
	return New(level)
}

// ParseLevel maps a level name to a Level. Unknown names report false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return ErrorLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "info":
		return InfoLevel, true
	case "debug":
		return DebugLevel, true
	default:
		return ErrorLevel, false
	}
}

// SetOutput sets the output writer for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	l.zl = zerolog.New(console).Level(l.level.toZerolog()).With().Timestamp().Str("app", "cmrunner").Logger()
}

// SetLevel changes the minimum level that is written
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.zl = l.zl.Level(level.toZerolog())
}

// Level returns the configured level
func (l *Logger) Level() Level {
	return l.level
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Printf provides compatibility with existing code
func (l *Logger) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.output, format, args...)
}

func (lvl Level) toZerolog() zerolog.Level {
	switch lvl {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
