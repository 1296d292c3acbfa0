// Package logging provides a leveled logger backed by log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelError + 4
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
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

// syncWriter lets the destination be swapped after handlers are built.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// Logger is a leveled logger. Messages take slog-style key/value pairs:
//
//	log.Info("lookup complete", "body", "Sun", "provider", "horizons")
type Logger struct {
	level *slog.LevelVar
	out   *syncWriter
	l     *slog.Logger
}

// New creates a new logger writing text records to stderr.
func New(level Level) *Logger {
	return newLogger(level, os.Stderr)
}

func newLogger(level Level, w io.Writer) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.slog())
	out := &syncWriter{w: w}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lv})
	return &Logger{level: lv, out: out, l: slog.New(h)}
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.set(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slog())
}

// With returns a child logger that adds the given attributes to every record.
// The child shares the parent's level and output.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, out: l.out, l: l.l.With(args...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.l.Debug(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.l.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.l.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.l.Error(msg, args...)
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.l
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return newLogger(LevelError+1, io.Discard)
}
