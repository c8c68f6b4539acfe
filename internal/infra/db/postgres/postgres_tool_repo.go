package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

var _ repository.ToolRepository = (*toolRepo)(nil)

type toolRepo struct {
	pool *pgxpool.Pool
}

func NewToolRepo(pool *pgxpool.Pool) *toolRepo {
	return &toolRepo{pool: pool}
}

func (r *toolRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tool) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	const q = `
INSERT INTO tools (id, slug, name, description, url, tags, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE SET
  name = EXCLUDED.name,
  description = EXCLUDED.description,
  url = EXCLUDED.url,
  tags = EXCLUDED.tags,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Slug, t.Name, t.Description, t.URL, t.Tags, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *toolRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Tool, error) {
	const q = `SELECT id, slug, name, description, url, tags, created_at, updated_at FROM tools ORDER BY name;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Tool
	for rows.Next() {
		t := &model.Tool{}
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &t.URL, &t.Tags, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
