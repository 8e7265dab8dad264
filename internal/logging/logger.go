package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
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

// ParseLevel maps a flag value to a Level. Unknown names yield LevelInfo and
// false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Logger writes leveled lines to a file or any writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	level    Level
	enabled  bool
	filePath string
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Initialize opens today's log file in logDir and makes it the default
// logger.
func Initialize(logDir string, level Level) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("typeahead-%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	setDefault(&Logger{writer: file, level: level, enabled: true, filePath: logPath})
	return nil
}

// InitializeWriter logs to w instead of a file.
func InitializeWriter(w io.Writer, level Level) {
	setDefault(&Logger{writer: w, level: level, enabled: true})
}

func setDefault(l *Logger) {
	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()
	if prev != nil {
		_ = prev.close()
	}
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// SetEnabled enables or disables logging
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.level || l.writer == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s: %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"), level, fmt.Sprintf(format, args...))
	_, _ = io.WriteString(l.writer, line)
}

func (l *Logger) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	closer, ok := l.writer.(io.Closer)
	l.writer = nil
	if !ok || closer == os.Stdout || closer == os.Stderr {
		return nil
	}
	return closer.Close()
}

func log(level Level, format string, args ...any) {
	if l := current(); l != nil {
		l.log(level, format, args...)
	}
}

// Debug logs a debug message
func Debug(format string, args ...any) { log(LevelDebug, format, args...) }

// Info logs an info message
func Info(format string, args ...any) { log(LevelInfo, format, args...) }

// Warn logs a warning message
func Warn(format string, args ...any) { log(LevelWarn, format, args...) }

// Error logs an error message
func Error(format string, args ...any) { log(LevelError, format, args...) }

// WithError logs err with context, if err is not nil.
func WithError(err error, context string) {
	if err != nil {
		log(LevelError, "%s: %v", context, err)
	}
}

// Close closes the log file and drops the default logger.
func Close() error {
	defaultMu.Lock()
	l := defaultLogger
	defaultLogger = nil
	defaultMu.Unlock()
	if l == nil {
		return nil
	}
	return l.close()
}

// GetLogPath returns the current log file path, empty when not logging to a
// file.
func GetLogPath() string {
	if l := current(); l != nil {
		return l.filePath
	}
	return ""
}
