package repository

import (
	"context"
	"time"
)

// RateLimitRepository persists fixed-window request counters.
type RateLimitRepository interface {
	// Increment atomically bumps the counter for (identityHash, endpoint,
	// windowStart) and reports whether the request is allowed. The
	// check-and-increment MUST be a single storage-level statement: when
	// the counter has already reached limit the call returns allowed=false
	// WITHOUT incrementing, so denials never count against the limit.
	Increment(ctx context.Context, identityHash, endpoint string, windowStart time.Time, limit int) (count int, allowed bool, err error)

	// DeleteOlderThan removes counters whose window started before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
