package logger

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Entry is a single buffered log record, served as-is by /api/logs
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Logger writes through the standard logger and keeps the most recent
// messages in a fixed-size ring for the HTTP API
type Logger struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
	pos     int
	filled  bool
}

// New creates a Logger retaining the last bufferSize entries
func New(bufferSize int) *Logger {
	return &Logger{
		entries: make([]Entry, bufferSize),
		size:    bufferSize,
	}
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", level, msg)

	l.mu.Lock()
	l.entries[l.pos] = Entry{
		Timestamp: time.Now().Format("2006-01-02 15:04:05.000"),
		Level:     level.String(),
		Message:   msg,
	}
	l.pos = (l.pos + 1) % l.size
	if l.pos == 0 {
		l.filled = true
	}
	l.mu.Unlock()
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

// Entries returns the buffered entries in chronological order
func (l *Logger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	count := l.pos
	if l.filled {
		start = l.pos
		count = l.size
	}

	result := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, l.entries[(start+i)%l.size])
	}
	return result
}
