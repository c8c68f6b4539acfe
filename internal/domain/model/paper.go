package model

import "time"

type PaperSource string

const (
	PaperSourceArxiv      PaperSource = "arxiv"
	PaperSourceOpenReview PaperSource = "openreview"
)

// Paper is an ingested research paper. (Source, SourceID) is the
// external identity: re-ingesting the same pair upserts, never duplicates.
type Paper struct {
	ID          string
	Source      PaperSource
	SourceID    string
	Title       string
	Abstract    string
	Authors     []string
	Categories  []string
	PublishedAt time.Time

	// Derived fields written by the summarize job; empty until then.
	Summary        string
	CodeAngle      string
	BioInspiration string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ParsePaperSource(s string) (PaperSource, bool) {
	switch PaperSource(s) {
	case PaperSourceArxiv, PaperSourceOpenReview:
		return PaperSource(s), true
	}
	return "", false
}
