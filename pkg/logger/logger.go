package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with the helpers used across the services.
type Logger struct {
	*zap.Logger
}

// New creates a logger with the given level ("debug", "info", "warn", "error")
// and encoding ("json" or "console").
func New(level, encoding string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if encoding == "" {
		encoding = "json"
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{zapLogger}, nil
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// DebugContext logs at debug level; the context is accepted for call-site
// symmetry with blocking operations.
func (l *Logger) DebugContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Debug(msg, fields...)
}

// InfoContext logs at info level.
func (l *Logger) InfoContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Info(msg, fields...)
}

// ErrorContext logs at error level.
func (l *Logger) ErrorContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Error(msg, fields...)
}

// Field creates a zap field from an arbitrary value.
func Field(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// StringField creates a string zap field.
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int zap field.
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field creates a float64 zap field.
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// ErrorField creates an error zap field.
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
