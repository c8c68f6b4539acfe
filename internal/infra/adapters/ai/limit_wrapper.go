package ai

import (
	"context"

	"paperlearn/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI bounds the number of in-flight provider calls with a
// semaphore. Acquisition respects context cancellation so callers
// waiting on a slot do not outlive their request.
type limitedAI struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

// NewLimitedAI wraps inner so at most maxConcurrent calls run at once.
// A non-positive maxConcurrent returns inner unwrapped.
func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) release() { <-l.sem }

func (l *limitedAI) Complete(ctx context.Context, model, system, prompt string) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.release()
	return l.inner.Complete(ctx, model, system, prompt)
}

func (l *limitedAI) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.inner.GenerateImage(ctx, model, prompt)
}

func (l *limitedAI) CountTokens(ctx context.Context, model, text string) (int, error) {
	// Token counting is local for some providers; still bounded to keep
	// remote implementations from stampeding.
	if err := l.acquire(ctx); err != nil {
		return 0, err
	}
	defer l.release()
	return l.inner.CountTokens(ctx, model, text)
}
