package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownSource),
		errors.Is(err, domain.ErrUnknownJobKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

type paperView struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	SourceID       string    `json:"source_id"`
	Title          string    `json:"title"`
	Abstract       string    `json:"abstract"`
	Authors        []string  `json:"authors"`
	Categories     []string  `json:"categories"`
	PublishedAt    time.Time `json:"published_at"`
	Summary        string    `json:"summary,omitempty"`
	CodeAngle      string    `json:"code_angle,omitempty"`
	BioInspiration string    `json:"bio_inspiration,omitempty"`
}

func toPaperView(p *model.Paper) paperView {
	return paperView{
		ID:             p.ID,
		Source:         string(p.Source),
		SourceID:       p.SourceID,
		Title:          p.Title,
		Abstract:       p.Abstract,
		Authors:        p.Authors,
		Categories:     p.Categories,
		PublishedAt:    p.PublishedAt,
		Summary:        p.Summary,
		CodeAngle:      p.CodeAngle,
		BioInspiration: p.BioInspiration,
	}
}

func (s *Server) papersListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var source model.PaperSource
	if raw := r.URL.Query().Get("source"); raw != "" {
		parsed, ok := model.ParsePaperSource(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown source "+strconv.Quote(raw))
			return
		}
		source = parsed
	}

	offset, limit := pageParams(r)
	papers, total, err := s.papers.List(ctx, source, offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list papers failed")
		writeDomainError(w, err)
		return
	}

	views := make([]paperView, 0, len(papers))
	for _, p := range papers {
		views = append(views, toPaperView(p))
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []paperView `json:"data"`
		Total  int         `json:"total"`
		Limit  int         `json:"limit"`
		Offset int         `json:"offset"`
	}{Data: views, Total: total, Limit: limit, Offset: offset})
}

type postView struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	CodeAngle      string    `json:"code_angle,omitempty"`
	BioInspiration string    `json:"bio_inspiration,omitempty"`
	CoverURL       string    `json:"cover_url,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPostView(a *model.Article) postView {
	v := postView{
		Slug:           a.Slug,
		Title:          a.Title,
		Summary:        a.Summary,
		CodeAngle:      a.CodeAngle,
		BioInspiration: a.BioInspiration,
		Tags:           a.Tags,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.CoverKey != "" {
		v.CoverURL = "/assets/" + a.CoverKey
	}
	return v
}

func (s *Server) postsListHandler(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	posts, total, err := s.posts.ListPublished(r.Context(), offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list posts failed")
		writeDomainError(w, err)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, a := range posts {
		views = append(views, toPostView(a))
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []postView `json:"data"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: views, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) toolsListHandler(w http.ResponseWriter, r *http.Request) {
	tools, err := s.tools.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list tools failed")
		writeDomainError(w, err)
		return
	}
	if tools == nil {
		tools = []*model.Tool{}
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Tool `json:"data"`
	}{Data: tools})
}

type brainContextRequest struct {
	Term string `json:"term"`
}

func (s *Server) brainContextHandler(w http.ResponseWriter, r *http.Request) {
	var req brainContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	markdown, cached, err := s.brain.Explain(r.Context(), req.Term)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidArgument) {
			s.log.Error().Err(err).Str("term", req.Term).Msg("brain context failed")
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Term     string `json:"term"`
		Markdown string `json:"markdown"`
		Cached   bool   `json:"cached"`
	}{Term: req.Term, Markdown: markdown, Cached: cached})
}

// coverHandler streams a stored cover image. Covers are weak
// references, so a missing blob is a plain 404.
func (s *Server) coverHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.store.Get(r.Context(), "covers/"+name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.log.Error().Err(err).Str("name", name).Msg("cover fetch failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
