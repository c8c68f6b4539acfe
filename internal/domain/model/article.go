package model

import (
	"regexp"
	"strings"
	"time"
)

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is an AI-assisted learn post derived from a research paper
// (or written by hand). The slug is the permanent URL key: once the
// article is published it must never change.
type Article struct {
	ID             string
	Slug           string
	Title          string
	Summary        string
	CodeAngle      string
	BioInspiration string
	BodyMarkdown   string
	CoverKey       string
	PaperID        string
	Status         ArticleStatus
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewArticle(slug, title string) *Article {
	now := time.Now()
	return &Article{
		Slug:      slug,
		Title:     title,
		Status:    ArticleStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Article) Published() bool {
	return a.Status == ArticleStatusPublished
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapse = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL slug from a title. Lossy and stable per input.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}
