// File: internal/usecase/job_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
	"paperlearn/internal/domain/ports/repository"
	"paperlearn/internal/infra/metrics"
	"paperlearn/internal/infra/storage"
)

const summarizeSystem = "You are an editor for a blog that connects neuromorphic-computing research to " +
	"everyday software engineering. Given a paper's title and abstract, answer with STRICT JSON, no prose, " +
	"no Markdown fences, matching exactly: " +
	`{"summary": "...", "code_angle": "...", "bio_inspiration": "..."}. ` +
	"summary: 2-3 sentences for engineers. code_angle: how a developer could apply the idea. " +
	"bio_inspiration: the biological mechanism the work borrows."

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

type JobUseCase interface {
	// Enqueue validates kind and payload and persists a queued job.
	Enqueue(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error)

	// Run executes a queued job to a terminal state. Pipeline failures are
	// recorded on the job (status=failed) and do NOT surface as a non-nil
	// error; the error return is for infrastructure faults only (the job
	// row could not be written).
	Run(ctx context.Context, job *model.Job) error

	// EnqueueAndRun is Enqueue followed by Run within the same request.
	EnqueueAndRun(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error)

	Get(ctx context.Context, id string) (*model.Job, error)
}

type jobUC struct {
	txm      repository.TransactionManager
	jobs     repository.JobRepository
	papers   repository.PaperRepository
	articles repository.ArticleRepository
	sources  map[model.PaperSource]adapter.PaperSourceAdapter
	ai       adapter.AIServiceAdapter
	store    storage.Store

	textModel       string
	imageModel      string
	maxPromptTokens int

	log *zerolog.Logger
}

func NewJobUseCase(
	txm repository.TransactionManager,
	jobs repository.JobRepository,
	papers repository.PaperRepository,
	articles repository.ArticleRepository,
	sources map[model.PaperSource]adapter.PaperSourceAdapter,
	ai adapter.AIServiceAdapter,
	store storage.Store,
	textModel, imageModel string,
	maxPromptTokens int,
	logger *zerolog.Logger,
) *jobUC {
	l := logger.With().Str("component", "JobUC").Logger()
	return &jobUC{
		txm:             txm,
		jobs:            jobs,
		papers:          papers,
		articles:        articles,
		sources:         sources,
		ai:              ai,
		store:           store,
		textModel:       textModel,
		imageModel:      imageModel,
		maxPromptTokens: maxPromptTokens,
		log:             &l,
	}
}

// payload shapes, one per job kind
type ingestPayload struct {
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
}

type summarizePayload struct {
	PaperID string `json:"paper_id"`
}

type coverPayload struct {
	Slug string `json:"slug"`
}

func (u *jobUC) Enqueue(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error) {
	if _, ok := model.ParseJobKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, kind)
	}
	if err := validatePayload(kind, payload); err != nil {
		return nil, err
	}

	job := model.NewJob(kind, payload)
	if err := u.jobs.Save(ctx, nil, job); err != nil {
		return nil, err
	}
	return job, nil
}

func validatePayload(kind model.JobKind, payload json.RawMessage) error {
	switch kind {
	case model.JobKindIngestPaper:
		var p ingestPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		if _, ok := model.ParsePaperSource(p.Source); !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownSource, p.Source)
		}
		if strings.TrimSpace(p.SourceID) == "" {
			return fmt.Errorf("%w: source_id is required", domain.ErrInvalidArgument)
		}
	case model.JobKindSummarize:
		var p summarizePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		if strings.TrimSpace(p.PaperID) == "" {
			return fmt.Errorf("%w: paper_id is required", domain.ErrInvalidArgument)
		}
	case model.JobKindCover:
		var p coverPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		if strings.TrimSpace(p.Slug) == "" {
			return fmt.Errorf("%w: slug is required", domain.ErrInvalidArgument)
		}
	}
	return nil
}

func (u *jobUC) Run(ctx context.Context, job *model.Job) error {
	if err := job.Start(); err != nil {
		return err
	}
	if err := u.jobs.Save(ctx, nil, job); err != nil {
		return err
	}

	start := time.Now()
	var runErr error
	switch job.Kind {
	case model.JobKindIngestPaper:
		runErr = u.runIngest(ctx, job)
	case model.JobKindSummarize:
		runErr = u.runSummarize(ctx, job)
	case model.JobKindCover:
		runErr = u.runCover(ctx, job)
	default:
		runErr = fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, job.Kind)
	}

	if runErr != nil {
		u.log.Error().Err(runErr).Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("job failed")
		if job.Terminal() {
			// The in-memory transition outlived a rolled-back tx;
			// the stored row is still running.
			job.Status = model.JobStatusRunning
			job.Output = nil
		}
		if err := job.Fail(runErr.Error()); err != nil {
			return err
		}
		if err := u.jobs.Save(ctx, nil, job); err != nil {
			return err
		}
	}

	metrics.ObserveJob(string(job.Kind), string(job.Status), time.Since(start))
	return nil
}

func (u *jobUC) EnqueueAndRun(ctx context.Context, kind model.JobKind, payload json.RawMessage) (*model.Job, error) {
	job, err := u.Enqueue(ctx, kind, payload)
	if err != nil {
		return nil, err
	}
	if err := u.Run(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (u *jobUC) Get(ctx context.Context, id string) (*model.Job, error) {
	return u.jobs.FindByID(ctx, nil, id)
}

// runIngest fetches paper metadata from the external source and upserts
// it. The upsert and the job's terminal write commit atomically.
func (u *jobUC) runIngest(ctx context.Context, job *model.Job) error {
	var p ingestPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	source, _ := model.ParsePaperSource(p.Source)
	src, ok := u.sources[source]
	if !ok {
		return fmt.Errorf("%w: no adapter for %q", domain.ErrUnknownSource, source)
	}

	paper, err := src.Fetch(ctx, p.SourceID)
	if err != nil {
		return fmt.Errorf("fetch %s/%s: %w", p.Source, p.SourceID, err)
	}

	return u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		stored, err := u.papers.Upsert(ctx, tx, paper)
		if err != nil {
			return err
		}
		out, _ := json.Marshal(map[string]string{"paper_id": stored.ID})
		if err := job.Complete(out); err != nil {
			return err
		}
		return u.jobs.Save(ctx, tx, job)
	})
}

// derivedReply is the strict JSON contract for the summarize call.
type derivedReply struct {
	Summary        string `json:"summary"`
	CodeAngle      string `json:"code_angle"`
	BioInspiration string `json:"bio_inspiration"`
}

func (u *jobUC) runSummarize(ctx context.Context, job *model.Job) error {
	var p summarizePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	paper, err := u.papers.FindByID(ctx, nil, p.PaperID)
	if err != nil {
		return fmt.Errorf("load paper %s: %w", p.PaperID, err)
	}

	prompt := fmt.Sprintf("Title: %s\n\nAbstract: %s", paper.Title, paper.Abstract)
	n, err := u.ai.CountTokens(ctx, u.textModel, prompt)
	if err != nil {
		return fmt.Errorf("count prompt tokens: %w", err)
	}
	metrics.AddPromptTokens(u.textModel, n)
	if n > u.maxPromptTokens {
		return fmt.Errorf("%w: %d tokens, budget %d", domain.ErrPromptTooLarge, n, u.maxPromptTokens)
	}

	start := time.Now()
	raw, err := u.ai.Complete(ctx, u.textModel, summarizeSystem, prompt)
	metrics.ObserveAICall("summarize", u.textModel, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return fmt.Errorf("summarize completion: %w", err)
	}

	derived, err := parseDerivedReply(raw)
	if err != nil {
		return err
	}

	return u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		article, err := u.articles.FindByPaperID(ctx, tx, paper.ID)
		switch {
		case err == nil:
			// Re-summarizing refreshes content but keeps the slug stable.
		case errors.Is(err, domain.ErrNotFound):
			article = model.NewArticle(model.Slugify(paper.Title), paper.Title)
			article.PaperID = paper.ID
		default:
			return err
		}

		article.Summary = derived.Summary
		article.CodeAngle = derived.CodeAngle
		article.BioInspiration = derived.BioInspiration
		article.BodyMarkdown = composeBody(derived)
		article.UpdatedAt = time.Now()

		if err := u.articles.Save(ctx, tx, article); err != nil {
			return err
		}
		if err := u.papers.UpdateDerived(ctx, tx, paper.ID, derived.Summary, derived.CodeAngle, derived.BioInspiration); err != nil {
			return err
		}
		out, _ := json.Marshal(map[string]string{"slug": article.Slug})
		if err := job.Complete(out); err != nil {
			return err
		}
		return u.jobs.Save(ctx, tx, job)
	})
}

func (u *jobUC) runCover(ctx context.Context, job *model.Job) error {
	var p coverPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	article, err := u.articles.FindBySlug(ctx, nil, p.Slug)
	if err != nil {
		return fmt.Errorf("load article %s: %w", p.Slug, err)
	}

	prompt := fmt.Sprintf("Minimal abstract illustration for a technical blog post titled %q. "+
		"Neural circuitry motif, muted colors, no text.", article.Title)

	start := time.Now()
	img, err := u.ai.GenerateImage(ctx, u.imageModel, prompt)
	metrics.ObserveAICall("cover", u.imageModel, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return fmt.Errorf("generate cover: %w", err)
	}
	if len(img) == 0 {
		return fmt.Errorf("%w: empty image", domain.ErrMalformedAIReply)
	}

	key := "covers/" + article.Slug + ".png"
	if err := u.store.Put(ctx, key, img); err != nil {
		return fmt.Errorf("store cover %s: %w", key, err)
	}

	return u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		article.CoverKey = key
		article.UpdatedAt = time.Now()
		if err := u.articles.Save(ctx, tx, article); err != nil {
			return err
		}
		out, _ := json.Marshal(map[string]string{"cover_key": key})
		if err := job.Complete(out); err != nil {
			return err
		}
		return u.jobs.Save(ctx, tx, job)
	})
}

// parseDerivedReply tolerates a fenced reply but rejects anything that
// is not the full three-field object.
func parseDerivedReply(raw string) (*derivedReply, error) {
	raw = stripFences(raw)
	var d derivedReply
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAIReply, err)
	}
	d.Summary = strings.TrimSpace(d.Summary)
	d.CodeAngle = strings.TrimSpace(d.CodeAngle)
	d.BioInspiration = strings.TrimSpace(d.BioInspiration)
	if d.Summary == "" || d.CodeAngle == "" || d.BioInspiration == "" {
		return nil, fmt.Errorf("%w: missing field", domain.ErrMalformedAIReply)
	}
	return &d, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func composeBody(d *derivedReply) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	b.WriteString(d.Summary)
	b.WriteString("\n\n## The Code Angle\n\n")
	b.WriteString(d.CodeAngle)
	b.WriteString("\n\n## Bio-Inspiration\n\n")
	b.WriteString(d.BioInspiration)
	b.WriteString("\n")
	return b.String()
}
