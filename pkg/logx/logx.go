// Package logx provides structured logging functionality with env-driven debug logging.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a component-scoped logger. Each pipeline component (planner,
// architect, coder, driver) gets its own instance so log lines are
// attributable.
type Logger struct {
	component string
	logger    *log.Logger
}

// Level identifies the severity of a log line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu           sync.RWMutex
	debugEnabled bool
	sink         io.Writer = os.Stderr
)

//nolint:gochecknoinits // Required for env var initialization
func init() {
	if debug := os.Getenv("DEBUG"); debug == "1" || strings.EqualFold(debug, "true") {
		debugEnabled = true
	}
}

// SetDebug toggles debug logging at runtime (overrides the DEBUG env var).
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// EnableFileLogging mirrors all log output into a rotating file in addition
// to stderr. Rotation keeps at most 5 backups of 10MB each.
func EnableFileLogging(path string) {
	mu.Lock()
	defer mu.Unlock()
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
	}
	sink = io.MultiWriter(os.Stderr, rotator)
}

// NewLogger creates a logger for the named component.
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(writer{}, "", 0),
	}
}

// writer defers sink resolution to write time so EnableFileLogging affects
// loggers created before it was called.
type writer struct{}

func (writer) Write(p []byte) (int, error) {
	mu.RLock()
	w := sink
	mu.RUnlock()
	return w.Write(p)
}

func (l *Logger) logf(level Level, msg string, args ...any) {
	timestamp := time.Now().UTC().Format("15:04:05.000")
	formatted := fmt.Sprintf(msg, args...)
	l.logger.Printf("%s [%s] %s: %s", timestamp, level, l.component, formatted)
}

// Debug logs a debug message. Suppressed unless debug logging is enabled.
func (l *Logger) Debug(msg string, args ...any) {
	mu.RLock()
	enabled := debugEnabled
	mu.RUnlock()
	if !enabled {
		return
	}
	l.logf(LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.logf(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logf(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.logf(LevelError, msg, args...)
}
