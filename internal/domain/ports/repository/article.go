package repository

import (
	"context"

	"paperlearn/internal/domain/model"
)

type ArticleRepository interface {
	// Save upserts keyed on slug. Rows are never hard-deleted; status
	// transitions are the soft-delete path.
	Save(ctx context.Context, tx Tx, a *model.Article) error
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.Article, error)
	// FindByPaperID returns the article derived from a paper, if any.
	FindByPaperID(ctx context.Context, tx Tx, paperID string) (*model.Article, error)
	ListPublished(ctx context.Context, tx Tx, offset, limit int) ([]*model.Article, error)
	CountPublished(ctx context.Context, tx Tx) (int, error)
}
