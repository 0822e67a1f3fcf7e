package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"fooddelivery/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedSQLLogger(level gormlogger.LogLevel, slow time.Duration) (*SQLLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newSQLLogger(zap.New(core), level, slow), logs
}

func stmt(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestSQLLoggerTrace(t *testing.T) {
	old := time.Now().Add(-time.Second)

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"statement at info", gormlogger.Info, time.Now(), nil, "statement"},
		{"statement hidden at warn", gormlogger.Warn, time.Now(), nil, ""},
		{"slow statement", gormlogger.Warn, old, nil, "slow statement"},
		{"slow hidden at error", gormlogger.Error, old, nil, ""},
		{"failure", gormlogger.Error, time.Now(), errors.New("deadlock"), "statement failed"},
		{"missing row is not a failure", gormlogger.Error, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"silent", gormlogger.Silent, old, errors.New("deadlock"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := observedSQLLogger(tt.level, 100*time.Millisecond)
			l.Trace(context.Background(), tt.begin, stmt("SELECT * FROM orders", 1), tt.err)

			entries := logs.All()
			if tt.wantMsg == "" {
				if len(entries) != 0 {
					t.Fatalf("expected nothing, got %q", entries[0].Message)
				}
				return
			}
			if len(entries) != 1 || entries[0].Message != tt.wantMsg {
				t.Fatalf("entries = %v, want %q", entries, tt.wantMsg)
			}
			if entries[0].LoggerName != "sql" {
				t.Errorf("logger name = %q", entries[0].LoggerName)
			}
			if got := entries[0].ContextMap()["statement"]; got != "SELECT * FROM orders" {
				t.Errorf("statement = %v", got)
			}
		})
	}
}

func TestSQLLoggerRequestID(t *testing.T) {
	l, logs := observedSQLLogger(gormlogger.Info, 0)
	ctx := persistence.ContextWithRequestID(context.Background(), "req-7")

	l.Trace(ctx, time.Now(), stmt("UPDATE carts SET version = 2", 1), nil)
	l.Warn(ctx, "pool exhausted after %d waits", 3)

	for _, e := range logs.All() {
		if e.ContextMap()["request_id"] != "req-7" {
			t.Errorf("%q missing request_id: %v", e.Message, e.ContextMap())
		}
	}
	if got := logs.FilterMessage("pool exhausted after 3 waits").Len(); got != 1 {
		t.Errorf("formatted warn entries = %d", got)
	}
}

func TestSQLLoggerLogMode(t *testing.T) {
	l, logs := observedSQLLogger(gormlogger.Silent, 0)
	loud := l.LogMode(gormlogger.Info)

	l.Info(context.Background(), "quiet")
	loud.Info(context.Background(), "loud")

	if logs.Len() != 1 || logs.All()[0].Message != "loud" {
		t.Errorf("entries = %v", logs.All())
	}
	if l.level != gormlogger.Silent {
		t.Error("LogMode must not mutate the receiver")
	}
}

func TestParseSQLLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"debug":  gormlogger.Info,
		"":       gormlogger.Warn,
		"bogus":  gormlogger.Warn,
	}
	for in, want := range cases {
		if got := ParseSQLLevel(in); got != want {
			t.Errorf("ParseSQLLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
