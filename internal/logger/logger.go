package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Config selects the level and optional rotating log file.
type Config struct {
	Level      string
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton console logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level string) *Logger {
	return GetWithConfig(Config{Level: level})
}

// GetWithConfig is Get with file output. Only the first call's config is used.
func GetWithConfig(cfg Config) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(cfg)
	})
	return globalLogger
}
