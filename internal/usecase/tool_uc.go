// File: internal/usecase/tool_uc.go
package usecase

import (
	"context"

	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/repository"
)

// Compile-time check
var _ ToolUseCase = (*toolUC)(nil)

type ToolUseCase interface {
	List(ctx context.Context) ([]*model.Tool, error)
}

type toolUC struct {
	tools repository.ToolRepository
}

func NewToolUseCase(tools repository.ToolRepository) *toolUC {
	return &toolUC{tools: tools}
}

func (u *toolUC) List(ctx context.Context) ([]*model.Tool, error) {
	return u.tools.ListAll(ctx, nil)
}
