package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Log levels accepted in the log.level setting.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Line formats accepted in the log.format setting.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	// globalLogger holds the process-wide logger.
	globalLogger *Logger
	once         sync.Once
)

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Get returns the process-wide logger. The first call fixes level and
// format; later calls return the same instance whatever they pass.
func Get(level, format string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(normalize(level), normalize(format))
	})
	return globalLogger
}

// Nop returns a logger that discards everything, for tests and tools.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Sync flushes buffered entries; errors from syncing a console are ignored.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
