package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

var _ repository.PaperRepository = (*paperRepo)(nil)

type paperRepo struct {
	pool *pgxpool.Pool
}

func NewPaperRepo(pool *pgxpool.Pool) *paperRepo {
	return &paperRepo{pool: pool}
}

const paperCols = `id, source, source_id, title, abstract, authors, categories, published_at,
  COALESCE(summary, ''), COALESCE(code_angle, ''), COALESCE(bio_inspiration, ''), created_at, updated_at`

// Upsert is keyed on UNIQUE(source, source_id): re-ingesting the same
// external paper refreshes the mutable metadata and keeps the row.
// Derived fields are deliberately NOT touched here; only the summarize
// job writes them via UpdateDerived.
func (r *paperRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.Paper) (*model.Paper, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()

	const q = `
INSERT INTO papers (id, source, source_id, title, abstract, authors, categories, published_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (source, source_id) DO UPDATE SET
  title = EXCLUDED.title,
  abstract = EXCLUDED.abstract,
  authors = EXCLUDED.authors,
  categories = EXCLUDED.categories,
  published_at = EXCLUDED.published_at,
  updated_at = EXCLUDED.updated_at
RETURNING ` + paperCols + `;`

	row, err := pickRow(ctx, r.pool, tx, q,
		p.ID, p.Source, p.SourceID, p.Title, p.Abstract, p.Authors, p.Categories, p.PublishedAt, now)
	if err != nil {
		return nil, err
	}
	return scanPaper(row)
}

func (r *paperRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Paper, error) {
	const q = `SELECT ` + paperCols + ` FROM papers WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPaper(row)
}

func (r *paperRepo) List(ctx context.Context, tx repository.Tx, source model.PaperSource, offset, limit int) ([]*model.Paper, error) {
	qb := sq.Select("id", "source", "source_id", "title", "abstract", "authors", "categories",
		"published_at", "COALESCE(summary, '')", "COALESCE(code_angle, '')",
		"COALESCE(bio_inspiration, '')", "created_at", "updated_at").
		From("papers").
		OrderBy("published_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)
	if source != "" {
		qb = qb.Where(sq.Eq{"source": source})
	}
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := pickRows(ctx, r.pool, tx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Paper
	for rows.Next() {
		p, err := scanPaperRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paperRepo) Count(ctx context.Context, tx repository.Tx, source model.PaperSource) (int, error) {
	qb := sq.Select("COUNT(*)").From("papers").PlaceholderFormat(sq.Dollar)
	if source != "" {
		qb = qb.Where(sq.Eq{"source": source})
	}
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return 0, err
	}
	row, err := pickRow(ctx, r.pool, tx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *paperRepo) UpdateDerived(ctx context.Context, tx repository.Tx, id, summary, codeAngle, bioInspiration string) error {
	const q = `UPDATE papers SET summary = $2, code_angle = $3, bio_inspiration = $4, updated_at = NOW() WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, summary, codeAngle, bioInspiration)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPaper(row pgx.Row) (*model.Paper, error) {
	p := &model.Paper{}
	var source string
	err := row.Scan(&p.ID, &source, &p.SourceID, &p.Title, &p.Abstract, &p.Authors, &p.Categories,
		&p.PublishedAt, &p.Summary, &p.CodeAngle, &p.BioInspiration, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Source = model.PaperSource(source)
	return p, nil
}

func scanPaperRows(rows pgx.Rows) (*model.Paper, error) {
	p := &model.Paper{}
	var source string
	err := rows.Scan(&p.ID, &source, &p.SourceID, &p.Title, &p.Abstract, &p.Authors, &p.Categories,
		&p.PublishedAt, &p.Summary, &p.CodeAngle, &p.BioInspiration, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Source = model.PaperSource(source)
	return p, nil
}
