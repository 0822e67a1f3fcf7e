package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fooddelivery/infrastructure/persistence"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// SQLLogger is the gorm.Config Logger. Statements are logged under the
// "sql" name so order and cart queries can be filtered from request logs.
// A missing row is an expected answer (no cart yet, unknown order) and is
// never reported as a failure.
type SQLLogger struct {
	level     gormlogger.LogLevel
	slowQuery time.Duration
	base      *zap.Logger
}

// NewSQLLogger binds to the process logger at construction time. A zero
// slowQuery selects 200ms; a negative one disables slow-query warnings.
func NewSQLLogger(level gormlogger.LogLevel, slowQuery time.Duration) *SQLLogger {
	return newSQLLogger(log, level, slowQuery)
}

func newSQLLogger(base *zap.Logger, level gormlogger.LogLevel, slowQuery time.Duration) *SQLLogger {
	if base == nil {
		base = zap.NewNop()
	}
	if slowQuery == 0 {
		slowQuery = defaultSlowQuery
	}
	return &SQLLogger{level: level, slowQuery: slowQuery, base: base.Named("sql")}
}

// ParseSQLLevel maps the database.log_level setting. Unknown values fall
// back to warn so slow queries stay visible.
func ParseSQLLevel(s string) gormlogger.LogLevel {
	switch s {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug", "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) forCtx(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return l.base.With(zap.String("request_id", id))
	}
	return l.base
}

func (l *SQLLogger) Info(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.forCtx(ctx).Info(fmt.Sprintf(format, args...))
	}
}

func (l *SQLLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.forCtx(ctx).Warn(fmt.Sprintf(format, args...))
	}
}

func (l *SQLLogger) Error(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.forCtx(ctx).Error(fmt.Sprintf(format, args...))
	}
}

func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		if l.level < gormlogger.Error {
			return
		}
		stmt, rows := fc()
		l.forCtx(ctx).Error("statement failed", statementFields(stmt, rows, elapsed, zap.Error(err))...)
	case l.slowQuery > 0 && elapsed > l.slowQuery:
		if l.level < gormlogger.Warn {
			return
		}
		stmt, rows := fc()
		l.forCtx(ctx).Warn("slow statement", statementFields(stmt, rows, elapsed, zap.Duration("threshold", l.slowQuery))...)
	case l.level >= gormlogger.Info:
		stmt, rows := fc()
		l.forCtx(ctx).Debug("statement", statementFields(stmt, rows, elapsed)...)
	}
}

func statementFields(stmt string, rows int64, elapsed time.Duration, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("statement", stmt),
		zap.Int64("rows", rows),
		zap.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000),
	}, extra...)
}
