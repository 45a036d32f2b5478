// Package logger provides structured logging for the price predictor
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
	mu           sync.RWMutex
)

// contextKey is the type for context keys
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// BatchIDKey is the context key for a batch prediction run
	BatchIDKey contextKey = "batch_id"
	// SessionIDKey is the context key for the caller's interactive session
	SessionIDKey contextKey = "session_id"
)

// Config represents logger configuration
type Config struct {
	Level       string   `mapstructure:"level" yaml:"level"`
	Development bool     `mapstructure:"development" yaml:"development"`
	Encoding    string   `mapstructure:"encoding" yaml:"encoding"` // json or console
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths"`
}

// Init initializes the global logger. Only the first call has an effect.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		l, err = New(cfg)
		if err != nil {
			return
		}
		mu.Lock()
		globalLogger = l
		mu.Unlock()
	})
	return err
}

// New builds a zap logger from cfg without touching the global logger
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "json"
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.Development {
		logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return logger, nil
}

// Get returns the global logger
func Get() *zap.Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	if err := Init(Config{Level: "info", Encoding: "json"}); err != nil {
		fallback, _ := zap.NewProduction()
		mu.Lock()
		globalLogger = fallback
		mu.Unlock()
	}

	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// contextFields maps context keys to the log field they are emitted under
var contextFields = []contextKey{RequestIDKey, BatchIDKey, SessionIDKey}

// WithContext returns base annotated with the request, batch and session IDs
// found in ctx. A nil base means the global logger.
func WithContext(base *zap.Logger, ctx context.Context) *zap.Logger {
	if base == nil {
		base = Get()
	}
	for _, key := range contextFields {
		if id, ok := ctx.Value(key).(string); ok && id != "" {
			base = base.With(zap.String(string(key), id))
		}
	}
	return base
}

// With creates a child of the global logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
