// Package ratelimit implements a fixed-window request limiter backed by
// a persistent counter store. Time is divided into non-overlapping
// windows of fixed length; each (identity, endpoint, window) triple owns
// one counter and the counter resets by virtue of the window key rolling
// over, not by deletion. Old rows are swept out of band.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"paperlearn/internal/domain/ports/repository"
)

type Limiter struct {
	repo repository.RateLimitRepository
}

func New(repo repository.RateLimitRepository) *Limiter {
	return &Limiter{repo: repo}
}

// Allow checks and counts one request. The window start is
// floor(now/window)*window; the increment itself is a single atomic
// statement in the repository, so concurrent calls never lose updates.
// Denied requests are not counted against the limit.
func (l *Limiter) Allow(ctx context.Context, identityHash, endpoint string, limit int, window time.Duration, now time.Time) (bool, error) {
	windowStart := now.Truncate(window)
	_, allowed, err := l.repo.Increment(ctx, identityHash, endpoint, windowStart, limit)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// IdentityHash derives the stored client identity from the raw client
// address. Only the hash ever reaches the database.
func IdentityHash(clientAddr string) string {
	sum := sha256.Sum256([]byte(clientAddr))
	return hex.EncodeToString(sum[:])
}

// RetryAfter reports how long until the current window rolls over.
func RetryAfter(window time.Duration, now time.Time) time.Duration {
	return now.Truncate(window).Add(window).Sub(now)
}
