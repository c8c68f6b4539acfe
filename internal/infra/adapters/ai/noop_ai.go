package ai

import (
	"context"
	"strings"

	"paperlearn/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter returns canned responses for local/dev runs without a
// provider key. The completion is valid JSON so the summarize pipeline
// still works end to end.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter { return &NoopAIAdapter{} }

func (a *NoopAIAdapter) Complete(ctx context.Context, _, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return `{"summary":"Placeholder summary.","code_angle":"Placeholder code angle.","bio_inspiration":"Placeholder bio inspiration."}`, nil
}

func (a *NoopAIAdapter) GenerateImage(ctx context.Context, _, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 1x1 transparent PNG
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, nil
}

func (a *NoopAIAdapter) CountTokens(_ context.Context, _, text string) (int, error) {
	return len(strings.Fields(text)), nil
}
