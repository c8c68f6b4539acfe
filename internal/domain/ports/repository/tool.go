package repository

import (
	"context"

	"paperlearn/internal/domain/model"
)

type ToolRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Tool) error
	ListAll(ctx context.Context, tx Tx) ([]*model.Tool, error)
}
