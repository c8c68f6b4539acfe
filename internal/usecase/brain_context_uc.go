// File: internal/usecase/brain_context_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/ports/adapter"
	"paperlearn/internal/infra/metrics"
)

const brainContextSystem = "You are a concise technical glossary for a neuromorphic-computing blog. " +
	"Explain the requested term in 2-3 short Markdown paragraphs for a software engineer: " +
	"what it is, why it matters, and one concrete code-level connection. No headings, no preamble."

// ContextCache is the cache the explainer reads through. A miss is
// ("", nil), never an error.
type ContextCache interface {
	Get(ctx context.Context, term string) (string, error)
	Set(ctx context.Context, term, markdown string) error
}

// Compile-time check
var _ BrainContextUseCase = (*brainContextUC)(nil)

type BrainContextUseCase interface {
	// Explain returns a short Markdown explanation of the term,
	// served from cache when a previous call already generated one.
	Explain(ctx context.Context, term string) (markdown string, cached bool, err error)
}

type brainContextUC struct {
	cache     ContextCache
	ai        adapter.AIServiceAdapter
	modelName string
	log       *zerolog.Logger
}

func NewBrainContextUseCase(cache ContextCache, ai adapter.AIServiceAdapter, modelName string, logger *zerolog.Logger) *brainContextUC {
	l := logger.With().Str("component", "BrainContextUC").Logger()
	return &brainContextUC{cache: cache, ai: ai, modelName: modelName, log: &l}
}

func (u *brainContextUC) Explain(ctx context.Context, term string) (string, bool, error) {
	term = strings.TrimSpace(term)
	if term == "" || len(term) > 120 {
		return "", false, fmt.Errorf("%w: term must be 1-120 characters", domain.ErrInvalidArgument)
	}

	if u.cache != nil {
		if hit, err := u.cache.Get(ctx, term); err != nil {
			// Cache trouble degrades to a live call.
			u.log.Warn().Err(err).Msg("context cache read failed")
		} else if hit != "" {
			return hit, true, nil
		}
	}

	start := time.Now()
	reply, err := u.ai.Complete(ctx, u.modelName, brainContextSystem, term)
	metrics.ObserveAICall("brain_context", u.modelName, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", false, fmt.Errorf("generate brain context: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", false, domain.ErrMalformedAIReply
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, term, reply); err != nil {
			u.log.Warn().Err(err).Msg("context cache write failed")
		}
	}
	return reply, false, nil
}
