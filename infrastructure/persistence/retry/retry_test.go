package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"fooddelivery/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func fastConfig() Config {
	c := DefaultConfig
	c.InitialDelay = time.Millisecond
	c.MaxDelay = 2 * time.Millisecond
	return c
}

func TestRetryable(t *testing.T) {
	cfg := DefaultConfig
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conflict", fmt.Errorf("save: %w", shared.ErrConflict), true},
		{"deadlock", &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"lock wait", &mysqlDriver.MySQLError{Number: 1205, Message: "Lock wait timeout"}, true},
		{"sqlite busy", errors.New("database is locked"), true},
		{"unrelated mysql error", &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, false},
		{"bad connection", fmt.Errorf("begin: %w", driver.ErrBadConn), true},
		{"not found", shared.ErrNotFound, false},
		{"validation", shared.ErrInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	noConflict := cfg
	noConflict.RetryOnConcurrentModification = false
	if noConflict.Retryable(shared.ErrConflict) {
		t.Error("conflict retry should be switchable off")
	}
}

func TestPredicateConfig(t *testing.T) {
	flaky := errors.New("flaky")
	cfg := ForPredicate(3, time.Millisecond, time.Millisecond, func(err error) bool { return errors.Is(err, flaky) })

	if !cfg.Retryable(flaky) {
		t.Error("predicate match should retry")
	}
	if cfg.Retryable(shared.ErrConflict) {
		t.Error("predicate-only config must ignore database classification")
	}
}

func TestExecuteWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(ctx, fastConfig(), func(context.Context) error {
			calls++
			if calls < 3 {
				return shared.ErrConflict
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(ctx, fastConfig(), func(context.Context) error {
			calls++
			return shared.ErrNotFound
		})
		if !errors.Is(err, shared.ErrNotFound) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(ctx, fastConfig(), func(context.Context) error {
			calls++
			return shared.ErrConflict
		})
		if !errors.Is(err, shared.ErrConflict) || calls != DefaultConfig.MaxAttempts {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("disabled runs once", func(t *testing.T) {
		cfg := fastConfig()
		cfg.Enabled = false
		calls := 0
		_ = ExecuteWithRetry(ctx, cfg, func(context.Context) error {
			calls++
			return shared.ErrConflict
		})
		if calls != 1 {
			t.Errorf("calls = %d", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := ExecuteWithRetry(cctx, fastConfig(), func(context.Context) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestBackoffIsBounded(t *testing.T) {
	cfg := Config{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, BackoffFactor: 2}
	if d := cfg.Backoff(0); d != 0 {
		t.Errorf("attempt 0 = %v", d)
	}
	if d := cfg.Backoff(2); d != 20*time.Millisecond {
		t.Errorf("attempt 2 = %v, want 20ms", d)
	}
	if d := cfg.Backoff(10); d != 50*time.Millisecond {
		t.Errorf("attempt 10 = %v, want cap", d)
	}
}
