/*
Package logger owns the process-wide zap logger for the API and the outbox
worker. The package-level helpers drop entries until Init runs, so
libraries and tests can log without setup.
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = zap.NewNop()

// Init installs the process logger. Every entry carries the service name and
// environment so API and worker logs can share one index.
func Init(cfg *config.LogConfig, env string) error {
	l, err := Build(cfg, env)
	if err != nil {
		return err
	}
	log = l.With(zap.String("service", "food-delivery"), zap.String("env", env))
	return nil
}

// Build returns a logger for cfg without installing it.
func Build(cfg *config.LogConfig, env string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg.Format, env), sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newEncoder(format, env string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if format == "json" || (format == "" && env == "production") {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func openSink(cfg *config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" {
		return zapcore.Lock(os.Stdout), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return zapcore.AddSync(rotatingFile(cfg)), nil
}

func rotatingFile(cfg *config.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    positive(cfg.MaxSizeMB, 10),
		MaxBackups: positive(cfg.MaxBackups, 5),
		MaxAge:     positive(cfg.MaxAgeDays, 7),
		Compress:   cfg.Compress,
	}
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Replace swaps the process logger and returns a func restoring the old one.
func Replace(l *zap.Logger) (restore func()) {
	prev := log
	if l == nil {
		l = zap.NewNop()
	}
	log = l
	return func() { log = prev }
}

// Sync flushes buffered entries. Terminals and pipes reject fsync; that is
// not worth failing shutdown over.
func Sync() error {
	err := log.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}

func With(fields ...zap.Field) *zap.Logger { return log.With(fields...) }

func WithRequestID(requestID string) *zap.Logger {
	return log.With(zap.String("request_id", requestID))
}

// Ctx returns the logger tagged with the request id carried by ctx.
func Ctx(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return WithRequestID(id)
	}
	return log
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }
