// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v4"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
	"paperlearn/internal/domain/ports/repository"
)

// noopTxManager runs the function without a real transaction; the
// in-memory repos below ignore the tx handle entirely.
type noopTxManager struct{}

func (noopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]model.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]model.Job)}
}

func (r *memJobRepo) Save(_ context.Context, _ repository.Tx, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := j
	return &out, nil
}

type memPaperRepo struct {
	mu     sync.Mutex
	nextID int
	papers map[string]model.Paper // keyed by ID
}

func newMemPaperRepo() *memPaperRepo {
	return &memPaperRepo{papers: make(map[string]model.Paper)}
}

func (r *memPaperRepo) Upsert(_ context.Context, _ repository.Tx, p *model.Paper) (*model.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.papers {
		if existing.Source == p.Source && existing.SourceID == p.SourceID {
			existing.Title = p.Title
			existing.Abstract = p.Abstract
			existing.Authors = p.Authors
			existing.Categories = p.Categories
			r.papers[id] = existing
			out := existing
			return &out, nil
		}
	}
	r.nextID++
	stored := *p
	stored.ID = fmt.Sprintf("paper-%d", r.nextID)
	r.papers[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *memPaperRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *memPaperRepo) List(_ context.Context, _ repository.Tx, source model.PaperSource, offset, limit int) ([]*model.Paper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Paper
	for _, p := range r.papers {
		if source != "" && p.Source != source {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memPaperRepo) Count(_ context.Context, _ repository.Tx, source model.PaperSource) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.papers {
		if source == "" || p.Source == source {
			n++
		}
	}
	return n, nil
}

func (r *memPaperRepo) UpdateDerived(_ context.Context, _ repository.Tx, id, summary, codeAngle, bioInspiration string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Summary = summary
	p.CodeAngle = codeAngle
	p.BioInspiration = bioInspiration
	r.papers[id] = p
	return nil
}

type memArticleRepo struct {
	mu       sync.Mutex
	articles map[string]model.Article // keyed by slug
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{articles: make(map[string]model.Article)}
}

func (r *memArticleRepo) Save(_ context.Context, _ repository.Tx, a *model.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = "article-" + a.Slug
	}
	r.articles[a.Slug] = *a
	return nil
}

func (r *memArticleRepo) FindBySlug(_ context.Context, _ repository.Tx, slug string) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := a
	return &out, nil
}

func (r *memArticleRepo) FindByPaperID(_ context.Context, _ repository.Tx, paperID string) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.PaperID == paperID {
			out := a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memArticleRepo) ListPublished(_ context.Context, _ repository.Tx, offset, limit int) ([]*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Article
	for _, a := range r.articles {
		if a.Status == model.ArticleStatusPublished {
			cp := a
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memArticleRepo) CountPublished(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.articles {
		if a.Status == model.ArticleStatusPublished {
			n++
		}
	}
	return n, nil
}

// fakeAI routes each port method through an overridable function field.
type fakeAI struct {
	CompleteFn      func(ctx context.Context, model, system, prompt string) (string, error)
	GenerateImageFn func(ctx context.Context, model, prompt string) ([]byte, error)
	CountTokensFn   func(ctx context.Context, model, text string) (int, error)
}

func (f *fakeAI) Complete(ctx context.Context, model, system, prompt string) (string, error) {
	if f.CompleteFn != nil {
		return f.CompleteFn(ctx, model, system, prompt)
	}
	return `{"summary":"s","code_angle":"c","bio_inspiration":"b"}`, nil
}

func (f *fakeAI) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	if f.GenerateImageFn != nil {
		return f.GenerateImageFn(ctx, model, prompt)
	}
	return []byte{1, 2, 3}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model, text string) (int, error) {
	if f.CountTokensFn != nil {
		return f.CountTokensFn(ctx, model, text)
	}
	return 10, nil
}

type fakeSource struct {
	source  model.PaperSource
	FetchFn func(ctx context.Context, sourceID string) (*model.Paper, error)
}

func (f *fakeSource) Source() model.PaperSource { return f.source }

func (f *fakeSource) Fetch(ctx context.Context, sourceID string) (*model.Paper, error) {
	if f.FetchFn != nil {
		return f.FetchFn(ctx, sourceID)
	}
	return &model.Paper{
		Source:   f.source,
		SourceID: sourceID,
		Title:    "Fetched Paper",
		Abstract: "Fetched abstract.",
	}, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, term string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[term], nil
}

func (c *memCache) Set(_ context.Context, term, markdown string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[term] = markdown
	return nil
}

var (
	_ repository.TransactionManager = noopTxManager{}
	_ repository.JobRepository      = (*memJobRepo)(nil)
	_ repository.PaperRepository    = (*memPaperRepo)(nil)
	_ repository.ArticleRepository  = (*memArticleRepo)(nil)
	_ adapter.AIServiceAdapter      = (*fakeAI)(nil)
	_ adapter.PaperSourceAdapter    = (*fakeSource)(nil)
)
