package adapter

import "context"

// AIServiceAdapter is the port for LLM providers. Implementations must
// honor ctx cancellation; every call carries a deadline set by the caller.
type AIServiceAdapter interface {
	// Complete runs a single-turn completion with a system instruction.
	Complete(ctx context.Context, model, system, prompt string) (string, error)

	// GenerateImage returns raw image bytes (PNG) for the prompt.
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)

	// CountTokens returns the prompt token count for the given model.
	CountTokens(ctx context.Context, model, text string) (int, error)
}
