// File: internal/usecase/paper_uc.go
package usecase

import (
	"context"

	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

// Compile-time check
var _ PaperUseCase = (*paperUC)(nil)

type PaperUseCase interface {
	// List returns one page of papers newest-first plus the total count.
	// source == "" means all sources.
	List(ctx context.Context, source model.PaperSource, offset, limit int) ([]*model.Paper, int, error)
	Get(ctx context.Context, id string) (*model.Paper, error)
}

type paperUC struct {
	papers repository.PaperRepository
}

func NewPaperUseCase(papers repository.PaperRepository) *paperUC {
	return &paperUC{papers: papers}
}

func (u *paperUC) List(ctx context.Context, source model.PaperSource, offset, limit int) ([]*model.Paper, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := u.papers.List(ctx, nil, source, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.papers.Count(ctx, nil, source)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (u *paperUC) Get(ctx context.Context, id string) (*model.Paper, error) {
	return u.papers.FindByID(ctx, nil, id)
}
