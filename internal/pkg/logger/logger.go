package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	globalLogger *slog.Logger
	globalMu     sync.RWMutex
)

// ParseLevel maps a config level string to a slog level. Unknown values map to INFO.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitSlog installs a JSON slog logger on stdout. It is the fallback used before
// (or instead of) the zap-backed logger.
func InitSlog(levelStr string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(levelStr)})
	SetDefault(slog.New(handler))
}

// SetDefault installs l as the package logger and as the slog default.
func SetDefault(l *slog.Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
	slog.SetDefault(l)
}

func current() *slog.Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	InitSlog("INFO")
	return current()
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits with status 1.
func Fatal(msg string, args ...any) {
	current().Log(context.Background(), slog.LevelError, msg, args...)
	os.Exit(1)
}
