// Package retry reruns a unit of work, or any other idempotent step, when
// it fails for a reason that a second attempt can fix: a stale cart or
// order version, a MySQL deadlock or lock wait, a busy SQLite file or a
// dropped connection. Callers may add their own classification through
// RetryPredicate, which the payment gateway uses for transient upstream
// failures.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"fooddelivery/config"
	"fooddelivery/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

type Config struct {
	Enabled       bool
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool

	RetryOnConcurrentModification bool
	RetryOnDeadlock               bool
	RetryOnLockTimeout            bool

	// RetryPredicate is consulted before the storage classification.
	RetryPredicate func(error) bool
	// OnlyPredicate skips the storage classification entirely.
	OnlyPredicate bool
}

var DefaultConfig = Config{
	Enabled:                       true,
	MaxAttempts:                   3,
	InitialDelay:                  100 * time.Millisecond,
	MaxDelay:                      2 * time.Second,
	BackoffFactor:                 2.0,
	JitterEnabled:                 true,
	RetryOnConcurrentModification: true,
	RetryOnDeadlock:               true,
	RetryOnLockTimeout:            true,
}

// FromAppConfig reads the database.retry section.
func FromAppConfig(appConfig *config.Config) Config {
	rc := appConfig.Database.Retry
	return Config{
		Enabled:                       rc.Enabled,
		MaxAttempts:                   rc.MaxAttempts,
		InitialDelay:                  rc.InitialDelay,
		MaxDelay:                      rc.MaxDelay,
		BackoffFactor:                 rc.BackoffFactor,
		JitterEnabled:                 rc.JitterEnabled,
		RetryOnConcurrentModification: rc.RetryOnConcurrentModification,
		RetryOnDeadlock:               rc.RetryOnDeadlock,
		RetryOnLockTimeout:            rc.RetryOnLockTimeout,
	}
}

// ForPredicate retries only what pred accepts.
func ForPredicate(maxAttempts int, initialDelay, maxDelay time.Duration, pred func(error) bool) Config {
	return Config{
		Enabled:        true,
		MaxAttempts:    maxAttempts,
		InitialDelay:   initialDelay,
		MaxDelay:       maxDelay,
		BackoffFactor:  2.0,
		JitterEnabled:  true,
		RetryPredicate: pred,
		OnlyPredicate:  true,
	}
}

// Backoff is the pause after the given failed attempt (1-based), capped at
// MaxDelay. Jitter spreads it by ±20%.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := math.Min(float64(c.InitialDelay)*math.Pow(c.BackoffFactor, float64(attempt-1)), float64(c.MaxDelay))
	if c.JitterEnabled {
		d *= 0.8 + 0.4*rand.Float64()
	}
	return time.Duration(math.Max(d, 0))
}

// Retryable reports whether another attempt may succeed where err failed.
func (c Config) Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case c.RetryPredicate != nil && c.RetryPredicate(err):
		return true
	case c.OnlyPredicate:
		return false
	case errors.Is(err, shared.ErrConflict):
		return c.RetryOnConcurrentModification
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDeadlock:
			return c.RetryOnDeadlock
		case mysqlLockWaitTimeout:
			return c.RetryOnLockTimeout
		}
		return false
	}
	if isSQLiteBusy(err) {
		return c.RetryOnDeadlock
	}
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqlDriver.ErrInvalidConn) ||
		errors.Is(err, gorm.ErrInvalidTransaction)
}

// The pure-Go sqlite driver has no exported error type worth unwrapping.
func isSQLiteBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// ExecuteWithRetry runs fn until it succeeds, fails permanently, runs out of
// attempts or ctx ends. The last error is returned unwrapped so callers can
// still classify it.
func ExecuteWithRetry(ctx context.Context, c Config, fn func(ctx context.Context) error) error {
	if !c.Enabled || c.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(ctx); err == nil || attempt >= c.MaxAttempts || !c.Retryable(err) {
			return err
		}
		if wait := c.Backoff(attempt); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
	}
}
