package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/ports/repository"
)

var _ repository.RateLimitRepository = (*rateLimitRepo)(nil)

type rateLimitRepo struct {
	pool *pgxpool.Pool
}

func NewRateLimitRepo(pool *pgxpool.Pool) *rateLimitRepo {
	return &rateLimitRepo{pool: pool}
}

// Increment is one atomic statement: insert-or-bump guarded by the limit
// in the UPDATE's WHERE clause. A two-statement check-then-write would
// lose updates under concurrency, so no row returned means denied -
// the counter was already at the limit and was NOT incremented.
func (r *rateLimitRepo) Increment(ctx context.Context, identityHash, endpoint string, windowStart time.Time, limit int) (int, bool, error) {
	const q = `
INSERT INTO rate_limits (identity_hash, endpoint, window_start, count, updated_at)
VALUES ($1, $2, $3, 1, NOW())
ON CONFLICT (identity_hash, endpoint, window_start) DO UPDATE SET
  count = rate_limits.count + 1,
  updated_at = NOW()
WHERE rate_limits.count < $4
RETURNING count;`

	var count int
	err := r.pool.QueryRow(ctx, q, identityHash, endpoint, windowStart, limit).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return limit, false, nil
		}
		return 0, false, domain.ErrOperationFailed
	}
	return count, count <= limit, nil
}

// DeleteOlderThan removes counters from long-expired windows. Called by
// the periodic sweep; expiry is advisory, never synchronous.
func (r *rateLimitRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < $1;`, cutoff)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return tag.RowsAffected(), nil
}
