package repository

import (
	"context"

	"paperlearn/internal/domain/model"
)

type PaperRepository interface {
	// Upsert inserts or updates keyed on (source, source_id). On conflict
	// the mutable fields (title, abstract, authors, categories) are
	// refreshed and the stored row (with its ID) is returned.
	Upsert(ctx context.Context, tx Tx, p *model.Paper) (*model.Paper, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Paper, error)
	// List returns papers newest-first; source == "" means all sources.
	List(ctx context.Context, tx Tx, source model.PaperSource, offset, limit int) ([]*model.Paper, error)
	Count(ctx context.Context, tx Tx, source model.PaperSource) (int, error)
	// UpdateDerived writes the summarize job's derived fields.
	UpdateDerived(ctx context.Context, tx Tx, id, summary, codeAngle, bioInspiration string) error
}
