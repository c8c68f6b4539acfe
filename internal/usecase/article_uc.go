// File: internal/usecase/article_uc.go
package usecase

import (
	"context"
	"fmt"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

// Compile-time check
var _ ArticleUseCase = (*articleUC)(nil)

type ArticleUseCase interface {
	ListPublished(ctx context.Context, offset, limit int) ([]*model.Article, int, error)
	// GetPublished returns the article only when its status is published;
	// drafts answer ErrNotFound so unpublished slugs stay invisible.
	GetPublished(ctx context.Context, slug string) (*model.Article, error)
	// Get returns the article regardless of status (admin path).
	Get(ctx context.Context, slug string) (*model.Article, error)
}

type articleUC struct {
	articles repository.ArticleRepository
}

func NewArticleUseCase(articles repository.ArticleRepository) *articleUC {
	return &articleUC{articles: articles}
}

func (u *articleUC) ListPublished(ctx context.Context, offset, limit int) ([]*model.Article, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := u.articles.ListPublished(ctx, nil, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.articles.CountPublished(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (u *articleUC) GetPublished(ctx context.Context, slug string) (*model.Article, error) {
	a, err := u.articles.FindBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if !a.Published() {
		return nil, fmt.Errorf("%w: article %q", domain.ErrNotFound, slug)
	}
	return a, nil
}

func (u *articleUC) Get(ctx context.Context, slug string) (*model.Article, error) {
	return u.articles.FindBySlug(ctx, nil, slug)
}
