// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	mu    sync.Mutex
)

// Init initializes the global logger for the given environment and level.
// For "production", it uses a JSON encoder. For all other environments,
// it uses a human-readable console encoder. An empty or unknown level
// falls back to info. Only the first call has an effect.
func Init(env, level string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}

	sugar = base.Sugar()
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.Lock()
	l := sugar
	mu.Unlock()
	if l == nil {
		Init("development", "info")
		return Get()
	}
	return l
}

// Named returns a child logger for a subsystem.
func Named(name string) *zap.SugaredLogger {
	return Get().Named(name)
}

// Replace swaps the global logger. Tests use it to silence or capture output.
func Replace(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = l
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.Lock()
	l := sugar
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
