package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/usecase"
)

type fakePaperUC struct {
	ListFn func(ctx context.Context, source model.PaperSource, offset, limit int) ([]*model.Paper, int, error)
	GetFn  func(ctx context.Context, id string) (*model.Paper, error)
}

func (f *fakePaperUC) List(ctx context.Context, source model.PaperSource, offset, limit int) ([]*model.Paper, int, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, source, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakePaperUC) Get(ctx context.Context, id string) (*model.Paper, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeArticleUC struct {
	ListPublishedFn func(ctx context.Context, offset, limit int) ([]*model.Article, int, error)
	GetPublishedFn  func(ctx context.Context, slug string) (*model.Article, error)
	GetFn           func(ctx context.Context, slug string) (*model.Article, error)
}

func (f *fakeArticleUC) ListPublished(ctx context.Context, offset, limit int) ([]*model.Article, int, error) {
	if f.ListPublishedFn != nil {
		return f.ListPublishedFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakeArticleUC) GetPublished(ctx context.Context, slug string) (*model.Article, error) {
	if f.GetPublishedFn != nil {
		return f.GetPublishedFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeArticleUC) Get(ctx context.Context, slug string) (*model.Article, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}

type fakeToolUC struct {
	ListFn func(ctx context.Context) ([]*model.Tool, error)
}

func (f *fakeToolUC) List(ctx context.Context) ([]*model.Tool, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return nil, nil
}

type fakeBrainUC struct {
	ExplainFn func(ctx context.Context, term string) (string, bool, error)
}

func (f *fakeBrainUC) Explain(ctx context.Context, term string) (string, bool, error) {
	if f.ExplainFn != nil {
		return f.ExplainFn(ctx, term)
	}
	if term == "" {
		return "", false, domain.ErrInvalidArgument
	}
	return "About " + term + ".", false, nil
}

type fakeJobUC struct {
	EnqueueFn       func(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error)
	RunFn           func(ctx context.Context, job *model.Job) error
	EnqueueAndRunFn func(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error)
	GetFn           func(ctx context.Context, id string) (*model.Job, error)
}

func (f *fakeJobUC) Enqueue(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error) {
	if f.EnqueueFn != nil {
		return f.EnqueueFn(ctx, kind, payload)
	}
	return model.NewJob(kind, payload), nil
}

func (f *fakeJobUC) Run(ctx context.Context, job *model.Job) error {
	if f.RunFn != nil {
		return f.RunFn(ctx, job)
	}
	return nil
}

func (f *fakeJobUC) EnqueueAndRun(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error) {
	if f.EnqueueAndRunFn != nil {
		return f.EnqueueAndRunFn(ctx, kind, payload)
	}
	job := model.NewJob(kind, payload)
	_ = job.Start()
	_ = job.Complete(json.RawMessage(`{}`))
	return job, nil
}

func (f *fakeJobUC) Get(ctx context.Context, id string) (*model.Job, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// memRateRepo mirrors the atomic check-and-increment contract: a full
// window denies without counting.
type memRateRepo struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemRateRepo() *memRateRepo {
	return &memRateRepo{counts: make(map[string]int)}
}

func (r *memRateRepo) Increment(_ context.Context, identityHash, endpoint string, windowStart time.Time, limit int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := identityHash + "|" + endpoint + "|" + windowStart.UTC().Format(time.RFC3339)
	if r.counts[key] >= limit {
		return r.counts[key], false, nil
	}
	r.counts[key]++
	return r.counts[key], true, nil
}

func (r *memRateRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

var (
	_ usecase.PaperUseCase        = (*fakePaperUC)(nil)
	_ usecase.ArticleUseCase      = (*fakeArticleUC)(nil)
	_ usecase.ToolUseCase         = (*fakeToolUC)(nil)
	_ usecase.BrainContextUseCase = (*fakeBrainUC)(nil)
	_ usecase.JobUseCase          = (*fakeJobUC)(nil)
)
