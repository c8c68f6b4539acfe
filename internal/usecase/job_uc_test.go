// File: internal/usecase/job_uc_test.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
	"paperlearn/internal/infra/storage"
)

type jobFixture struct {
	uc       *jobUC
	jobs     *memJobRepo
	papers   *memPaperRepo
	articles *memArticleRepo
	ai       *fakeAI
	store    *storage.MemoryStore
}

func newJobFixture() *jobFixture {
	logger := zerolog.Nop()
	f := &jobFixture{
		jobs:     newMemJobRepo(),
		papers:   newMemPaperRepo(),
		articles: newMemArticleRepo(),
		ai:       &fakeAI{},
		store:    storage.NewMemoryStore(),
	}
	sources := map[model.PaperSource]adapter.PaperSourceAdapter{
		model.PaperSourceArxiv: &fakeSource{source: model.PaperSourceArxiv},
	}
	f.uc = NewJobUseCase(
		noopTxManager{}, f.jobs, f.papers, f.articles,
		sources, f.ai, f.store,
		"test-model", "test-image-model", 1000, &logger,
	)
	return f
}

func ingestBody(source, sourceID string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"source": source, "source_id": sourceID})
	return b
}

func TestJobUC_EnqueueUnknownKind(t *testing.T) {
	f := newJobFixture()
	_, err := f.uc.Enqueue(context.Background(), "reticulate", json.RawMessage(`{}`))
	if !errors.Is(err, domain.ErrUnknownJobKind) {
		t.Fatalf("Enqueue() error = %v, want ErrUnknownJobKind", err)
	}
}

func TestJobUC_EnqueueBadSource(t *testing.T) {
	f := newJobFixture()
	_, err := f.uc.Enqueue(context.Background(), model.JobKindIngestPaper, ingestBody("usenet", "x"))
	if !errors.Is(err, domain.ErrUnknownSource) {
		t.Fatalf("Enqueue() error = %v, want ErrUnknownSource", err)
	}
}

func TestJobUC_IngestSuccess(t *testing.T) {
	f := newJobFixture()

	job, err := f.uc.EnqueueAndRun(context.Background(), model.JobKindIngestPaper, ingestBody("arxiv", "2301.00001"))
	if err != nil {
		t.Fatalf("EnqueueAndRun() error = %v", err)
	}
	if job.Status != model.JobStatusDone {
		t.Fatalf("status = %q, want done (last_error=%q)", job.Status, job.LastError)
	}

	var out map[string]string
	if err := json.Unmarshal(job.Output, &out); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if out["paper_id"] == "" {
		t.Fatal("output missing paper_id")
	}
	if _, err := f.papers.FindByID(context.Background(), nil, out["paper_id"]); err != nil {
		t.Fatalf("paper not persisted: %v", err)
	}

	// job row reflects the terminal state
	stored, err := f.jobs.FindByID(context.Background(), nil, job.ID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if stored.Status != model.JobStatusDone || stored.LastError != "" {
		t.Errorf("stored job = %q/%q, want done with empty last_error", stored.Status, stored.LastError)
	}
}

func TestJobUC_IngestUpsertsDuplicate(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	first, err := f.uc.EnqueueAndRun(ctx, model.JobKindIngestPaper, ingestBody("arxiv", "2301.00001"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.uc.EnqueueAndRun(ctx, model.JobKindIngestPaper, ingestBody("arxiv", "2301.00001"))
	if err != nil {
		t.Fatal(err)
	}

	var out1, out2 map[string]string
	_ = json.Unmarshal(first.Output, &out1)
	_ = json.Unmarshal(second.Output, &out2)
	if out1["paper_id"] != out2["paper_id"] {
		t.Errorf("re-ingest created a new paper: %q vs %q", out1["paper_id"], out2["paper_id"])
	}
	if n, _ := f.papers.Count(ctx, nil, ""); n != 1 {
		t.Errorf("paper count = %d, want 1", n)
	}
}

func TestJobUC_SummarizeSuccess(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	paper, _ := f.papers.Upsert(ctx, nil, &model.Paper{
		Source: model.PaperSourceArxiv, SourceID: "1", Title: "Spiking Networks in Practice", Abstract: "An abstract.",
	})
	f.ai.CompleteFn = func(_ context.Context, _, _, _ string) (string, error) {
		return "```json\n{\"summary\":\"S.\",\"code_angle\":\"C.\",\"bio_inspiration\":\"B.\"}\n```", nil
	}

	body, _ := json.Marshal(map[string]string{"paper_id": paper.ID})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindSummarize, body)
	if err != nil {
		t.Fatalf("EnqueueAndRun() error = %v", err)
	}
	if job.Status != model.JobStatusDone {
		t.Fatalf("status = %q (last_error=%q), want done", job.Status, job.LastError)
	}

	var out map[string]string
	_ = json.Unmarshal(job.Output, &out)
	wantSlug := "spiking-networks-in-practice"
	if out["slug"] != wantSlug {
		t.Errorf("output slug = %q, want %q", out["slug"], wantSlug)
	}

	article, err := f.articles.FindBySlug(ctx, nil, wantSlug)
	if err != nil {
		t.Fatalf("article not created: %v", err)
	}
	if article.Status != model.ArticleStatusDraft {
		t.Errorf("article status = %q, want draft", article.Status)
	}
	if article.Summary != "S." || !strings.Contains(article.BodyMarkdown, "## Summary") {
		t.Errorf("article content not derived: summary=%q body=%q", article.Summary, article.BodyMarkdown)
	}

	updated, _ := f.papers.FindByID(ctx, nil, paper.ID)
	if updated.Summary != "S." || updated.CodeAngle != "C." || updated.BioInspiration != "B." {
		t.Errorf("paper derived fields not written: %+v", updated)
	}
}

func TestJobUC_SummarizeKeepsExistingSlug(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	paper, _ := f.papers.Upsert(ctx, nil, &model.Paper{
		Source: model.PaperSourceArxiv, SourceID: "1", Title: "New Title After Revision", Abstract: "A.",
	})
	existing := model.NewArticle("original-slug", "Original Title")
	existing.PaperID = paper.ID
	if err := f.articles.Save(ctx, nil, existing); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{"paper_id": paper.ID})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindSummarize, body)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusDone {
		t.Fatalf("status = %q (last_error=%q)", job.Status, job.LastError)
	}

	var out map[string]string
	_ = json.Unmarshal(job.Output, &out)
	if out["slug"] != "original-slug" {
		t.Errorf("slug = %q, want the pre-existing slug", out["slug"])
	}
}

func TestJobUC_SummarizeLLMFailure(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	paper, _ := f.papers.Upsert(ctx, nil, &model.Paper{
		Source: model.PaperSourceArxiv, SourceID: "1", Title: "T", Abstract: "A",
	})
	f.ai.CompleteFn = func(_ context.Context, _, _, _ string) (string, error) {
		return "", errors.New("provider unavailable")
	}

	body, _ := json.Marshal(map[string]string{"paper_id": paper.ID})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindSummarize, body)
	if err != nil {
		t.Fatalf("pipeline failure must not surface as error, got %v", err)
	}
	if job.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.LastError == "" || job.Output != nil {
		t.Errorf("terminal exclusivity violated: last_error=%q output=%s", job.LastError, job.Output)
	}
	if _, err := f.articles.FindByPaperID(ctx, nil, paper.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("failed summarize must not leave a draft behind")
	}
}

func TestJobUC_SummarizeMalformedReply(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	paper, _ := f.papers.Upsert(ctx, nil, &model.Paper{
		Source: model.PaperSourceArxiv, SourceID: "1", Title: "T", Abstract: "A",
	})
	f.ai.CompleteFn = func(_ context.Context, _, _, _ string) (string, error) {
		return `{"summary":"only one field"}`, nil
	}

	body, _ := json.Marshal(map[string]string{"paper_id": paper.ID})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindSummarize, body)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if !strings.Contains(job.LastError, "malformed AI response") {
		t.Errorf("last_error = %q, want malformed reply", job.LastError)
	}
}

func TestJobUC_SummarizePromptTooLarge(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	paper, _ := f.papers.Upsert(ctx, nil, &model.Paper{
		Source: model.PaperSourceArxiv, SourceID: "1", Title: "T", Abstract: "A",
	})
	f.ai.CountTokensFn = func(_ context.Context, _, _ string) (int, error) { return 5000, nil }
	completed := false
	f.ai.CompleteFn = func(_ context.Context, _, _, _ string) (string, error) {
		completed = true
		return "", nil
	}

	body, _ := json.Marshal(map[string]string{"paper_id": paper.ID})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindSummarize, body)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if completed {
		t.Error("over-budget prompt must not reach the provider")
	}
}

func TestJobUC_CoverSuccess(t *testing.T) {
	f := newJobFixture()
	ctx := context.Background()

	article := model.NewArticle("my-post", "My Post")
	if err := f.articles.Save(ctx, nil, article); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{"slug": "my-post"})
	job, err := f.uc.EnqueueAndRun(ctx, model.JobKindCover, body)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusDone {
		t.Fatalf("status = %q (last_error=%q)", job.Status, job.LastError)
	}

	var out map[string]string
	_ = json.Unmarshal(job.Output, &out)
	if out["cover_key"] != "covers/my-post.png" {
		t.Errorf("cover_key = %q", out["cover_key"])
	}
	if _, err := f.store.Get(ctx, "covers/my-post.png"); err != nil {
		t.Errorf("cover blob missing: %v", err)
	}
	got, _ := f.articles.FindBySlug(ctx, nil, "my-post")
	if got.CoverKey != "covers/my-post.png" {
		t.Errorf("article cover_key = %q", got.CoverKey)
	}
}

func TestJobUC_RunTerminalJob(t *testing.T) {
	f := newJobFixture()
	job := model.NewJob(model.JobKindCover, json.RawMessage(`{"slug":"x"}`))
	_ = job.Start()
	_ = job.Fail("boom")

	if err := f.uc.Run(context.Background(), job); !errors.Is(err, domain.ErrJobTerminal) {
		t.Fatalf("Run() error = %v, want ErrJobTerminal", err)
	}
}
