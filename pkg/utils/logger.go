// Package utils предоставляет логгер приложения поверх zap.
//
// API пакета сохраняет форму key-value вызовов:
//
//	utils.Info("flow executed", "flow", name, "duration_ms", ms)
//
// До InitLogger все вызовы уходят в no-op логгер, поэтому библиотечный код
// и тесты могут логировать без инициализации.
package utils

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMutex sync.RWMutex
	logger   = zap.NewNop().Sugar()
)

// LogOptions — параметры логгера (секция app.log в config.yaml).
type LogOptions struct {
	// Level — debug, info, warn, error. Пустая строка = info.
	Level string

	// File — опциональный файл, куда дублируются записи помимо stderr.
	File string

	// Development включает человекочитаемый console encoder вместо JSON.
	Development bool
}

// InitLogger создаёт глобальный логгер.
//
// Повторный вызов заменяет предыдущий логгер (старый синхронизируется).
func InitLogger(opts LogOptions) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	SetLogger(built)
	return nil
}

// SetLogger подменяет глобальный логгер (используется в тестах с zaptest/observer).
func SetLogger(l *zap.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()

	_ = logger.Sync()
	logger = l.Sugar()
}

// Logger возвращает текущий логгер как *zap.Logger.
func Logger() *zap.Logger {
	return current().Desugar()
}

func current() *zap.SugaredLogger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logger
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	current().Infow(msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	current().Errorw(msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	current().Debugw(msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	current().Warnw(msg, keyvals...)
}

// Close сбрасывает буферы логгера.
//
// Вызывается через defer в main().
func Close() {
	_ = current().Sync()
}
