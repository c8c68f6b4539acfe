// File: internal/usecase/brain_context_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"paperlearn/internal/domain"
)

func newBrainContextFixture(ai *fakeAI) (*brainContextUC, *memCache) {
	logger := zerolog.Nop()
	cache := newMemCache()
	return NewBrainContextUseCase(cache, ai, "test-model", &logger), cache
}

func TestBrainContextUC_EmptyTerm(t *testing.T) {
	uc, _ := newBrainContextFixture(&fakeAI{})
	if _, _, err := uc.Explain(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Explain() error = %v, want ErrInvalidArgument", err)
	}
}

func TestBrainContextUC_GeneratesThenCaches(t *testing.T) {
	calls := 0
	ai := &fakeAI{
		CompleteFn: func(_ context.Context, _, _, prompt string) (string, error) {
			calls++
			return "An explanation of " + prompt + ".", nil
		},
	}
	uc, _ := newBrainContextFixture(ai)
	ctx := context.Background()

	md, cached, err := uc.Explain(ctx, "spike train")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if cached || md != "An explanation of spike train." {
		t.Fatalf("first call: cached=%v md=%q", cached, md)
	}

	md2, cached2, err := uc.Explain(ctx, "spike train")
	if err != nil {
		t.Fatal(err)
	}
	if !cached2 || md2 != md {
		t.Errorf("second call: cached=%v md=%q", cached2, md2)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
}

func TestBrainContextUC_CacheHitSkipsProvider(t *testing.T) {
	ai := &fakeAI{
		CompleteFn: func(_ context.Context, _, _, _ string) (string, error) {
			t.Fatal("provider must not be called on a cache hit")
			return "", nil
		},
	}
	uc, cache := newBrainContextFixture(ai)
	_ = cache.Set(context.Background(), "neuron", "Cached text.")

	md, cached, err := uc.Explain(context.Background(), "neuron")
	if err != nil {
		t.Fatal(err)
	}
	if !cached || md != "Cached text." {
		t.Errorf("got cached=%v md=%q", cached, md)
	}
}

func TestBrainContextUC_ProviderFailure(t *testing.T) {
	ai := &fakeAI{
		CompleteFn: func(_ context.Context, _, _, _ string) (string, error) {
			return "", errors.New("provider down")
		},
	}
	uc, _ := newBrainContextFixture(ai)
	if _, _, err := uc.Explain(context.Background(), "neuron"); err == nil {
		t.Fatal("Explain() expected error")
	}
}
