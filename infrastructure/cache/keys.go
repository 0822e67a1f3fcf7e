// Package cache holds the short-lived coordination state of the service:
// per-cart locks and payment notification deduplication. Redis backs both in
// multi-instance deployments; the memory implementations serve single
// instance and mock mode.
package cache

import "time"

const (
	// lock:{key} -> random token of the holder
	keyLock = "lock:%s"
	// dedup:{key} -> "1"
	keyDedup = "dedup:%s"
)

var (
	DefaultLockTTL  = 5 * time.Second
	DefaultDedupTTL = 72 * time.Hour
	lockRetryDelay  = 20 * time.Millisecond
)
