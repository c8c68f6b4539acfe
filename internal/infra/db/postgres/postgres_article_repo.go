package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

var _ repository.ArticleRepository = (*articleRepo)(nil)

type articleRepo struct {
	pool *pgxpool.Pool
}

func NewArticleRepo(pool *pgxpool.Pool) *articleRepo {
	return &articleRepo{pool: pool}
}

const articleCols = `id, slug, title, summary, code_angle, bio_inspiration, body_markdown,
  COALESCE(cover_key, ''), COALESCE(paper_id::text, ''), status, tags, created_at, updated_at`

// Save upserts keyed on slug and refreshes the full-text mirror column
// in the same statement. A published row's slug never changes because
// slug is the conflict key itself.
func (r *articleRepo) Save(ctx context.Context, tx repository.Tx, a *model.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.UpdatedAt = time.Now()

	const q = `
INSERT INTO learn_articles (id, slug, title, summary, code_angle, bio_inspiration, body_markdown,
  cover_key, paper_id, status, tags, created_at, updated_at, search_tsv)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, '')::uuid, $10, $11, $12, $13,
  to_tsvector('english', $3 || ' ' || $4 || ' ' || $7))
ON CONFLICT (slug) DO UPDATE SET
  title = EXCLUDED.title,
  summary = EXCLUDED.summary,
  code_angle = EXCLUDED.code_angle,
  bio_inspiration = EXCLUDED.bio_inspiration,
  body_markdown = EXCLUDED.body_markdown,
  cover_key = EXCLUDED.cover_key,
  paper_id = EXCLUDED.paper_id,
  status = EXCLUDED.status,
  tags = EXCLUDED.tags,
  updated_at = EXCLUDED.updated_at,
  search_tsv = EXCLUDED.search_tsv;`

	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.Slug, a.Title, a.Summary, a.CodeAngle, a.BioInspiration, a.BodyMarkdown,
		a.CoverKey, a.PaperID, a.Status, a.Tags, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *articleRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Article, error) {
	const q = `SELECT ` + articleCols + ` FROM learn_articles WHERE slug = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, slug)
	if err != nil {
		return nil, err
	}
	return scanArticle(row)
}

func (r *articleRepo) FindByPaperID(ctx context.Context, tx repository.Tx, paperID string) (*model.Article, error) {
	const q = `SELECT ` + articleCols + ` FROM learn_articles WHERE paper_id = $1::uuid LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, paperID)
	if err != nil {
		return nil, err
	}
	return scanArticle(row)
}

func (r *articleRepo) ListPublished(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Article, error) {
	const q = `SELECT ` + articleCols + `
FROM learn_articles WHERE status = 'published'
ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := pickRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Article
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *articleRepo) CountPublished(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM learn_articles WHERE status = 'published';`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanArticle(row pgx.Row) (*model.Article, error) {
	a := &model.Article{}
	var status string
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.CodeAngle, &a.BioInspiration,
		&a.BodyMarkdown, &a.CoverKey, &a.PaperID, &status, &a.Tags, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.Status = model.ArticleStatus(status)
	return a, nil
}

func scanArticleRow(rows pgx.Rows) (*model.Article, error) {
	a := &model.Article{}
	var status string
	err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.CodeAngle, &a.BioInspiration,
		&a.BodyMarkdown, &a.CoverKey, &a.PaperID, &status, &a.Tags, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	a.Status = model.ArticleStatus(status)
	return a, nil
}
