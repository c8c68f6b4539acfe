package adapter

import (
	"context"

	"paperlearn/internal/domain/model"
)

// PaperSourceAdapter is the port for external paper metadata APIs
// (arXiv, OpenReview). Fetch must be bounded by the ctx deadline.
type PaperSourceAdapter interface {
	Source() model.PaperSource

	// Fetch retrieves metadata for a single paper by its source-native ID.
	// Returns domain.ErrNotFound when the source has no such paper.
	Fetch(ctx context.Context, sourceID string) (*model.Paper, error)
}
