package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
)

var _ adapter.PaperSourceAdapter = (*OpenReviewAdapter)(nil)

// noteContent holds the fields we read from an OpenReview note. API v1
// delivers plain values; API v2 wraps each field in {"value": ...}, so
// every field gets a custom unmarshaller that accepts both shapes.
type noteContent struct {
	Title    contentString `json:"title"`
	Abstract contentString `json:"abstract"`
	Authors  contentList   `json:"authors"`
	Keywords contentList   `json:"keywords"`
}

type contentString string

func (c *contentString) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*c = contentString(plain)
		return nil
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*c = contentString(wrapped.Value)
	return nil
}

type contentList []string

func (c *contentList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*c = contentList(plain)
		return nil
	}
	var wrapped struct {
		Value []string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*c = contentList(wrapped.Value)
	return nil
}

type openReviewNote struct {
	ID      string      `json:"id"`
	CDate   int64       `json:"cdate"`
	Content noteContent `json:"content"`
}

type notesResponse struct {
	Notes []openReviewNote `json:"notes"`
}

// OpenReviewAdapter fetches paper metadata from the OpenReview notes API.
type OpenReviewAdapter struct {
	client  *http.Client
	baseURL string
}

func NewOpenReviewAdapter(client *http.Client, baseURL string) *OpenReviewAdapter {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &OpenReviewAdapter{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (a *OpenReviewAdapter) Source() model.PaperSource { return model.PaperSourceOpenReview }

func (a *OpenReviewAdapter) Fetch(ctx context.Context, sourceID string) (*model.Paper, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: empty openreview id", domain.ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("id", sourceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/notes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build openreview request: %w", err)
	}
	req.Header.Set("User-Agent", "paperlearn/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch openreview note: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: openreview id %q", domain.ErrNotFound, sourceID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openreview returned %s", domain.ErrOperationFailed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read openreview response: %w", err)
	}

	var parsed notesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse openreview response: %w", err)
	}
	if len(parsed.Notes) == 0 {
		return nil, fmt.Errorf("%w: openreview id %q", domain.ErrNotFound, sourceID)
	}

	note := parsed.Notes[0]
	publishedAt := time.Now().UTC()
	if note.CDate > 0 {
		publishedAt = time.UnixMilli(note.CDate).UTC()
	}

	return &model.Paper{
		Source:      model.PaperSourceOpenReview,
		SourceID:    sourceID,
		Title:       strings.TrimSpace(string(note.Content.Title)),
		Abstract:    strings.TrimSpace(string(note.Content.Abstract)),
		Authors:     []string(note.Content.Authors),
		Categories:  []string(note.Content.Keywords),
		PublishedAt: publishedAt,
	}, nil
}
