package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
	"paperlearn/internal/domain/ports/adapter"
)

var _ adapter.PaperSourceAdapter = (*ArxivAdapter)(nil)

// atomFeed mirrors the subset of the arXiv export Atom feed we read.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Category  []atomCat    `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCat struct {
	Term string `xml:"term,attr"`
}

// ArxivAdapter fetches paper metadata from the arXiv export API.
// Requests are paced with a client-side limiter; arXiv asks for no
// more than one request every three seconds.
type ArxivAdapter struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewArxivAdapter(client *http.Client, baseURL string) *ArxivAdapter {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArxivAdapter{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

func (a *ArxivAdapter) Source() model.PaperSource { return model.PaperSourceArxiv }

// Fetch resolves a single arXiv identifier (e.g. "2301.00001") through
// the id_list query and maps the first entry to a Paper.
func (a *ArxivAdapter) Fetch(ctx context.Context, sourceID string) (*model.Paper, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: empty arxiv id", domain.ErrInvalidArgument)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id_list", sourceID)
	q.Set("max_results", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build arxiv request: %w", err)
	}
	req.Header.Set("User-Agent", "paperlearn/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch arxiv entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: arxiv returned %s", domain.ErrOperationFailed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read arxiv response: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("%w: arxiv id %q", domain.ErrNotFound, sourceID)
	}

	entry := feed.Entries[0]
	// The export API answers unknown ids with a bare error entry whose
	// id links to the api errors page.
	if strings.Contains(entry.ID, "/api/errors") {
		return nil, fmt.Errorf("%w: arxiv id %q", domain.ErrNotFound, sourceID)
	}

	return entryToPaper(sourceID, entry), nil
}

func entryToPaper(sourceID string, entry atomEntry) *model.Paper {
	authors := make([]string, 0, len(entry.Authors))
	for _, au := range entry.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			authors = append(authors, name)
		}
	}
	categories := make([]string, 0, len(entry.Category))
	for _, c := range entry.Category {
		if c.Term != "" {
			categories = append(categories, c.Term)
		}
	}

	publishedAt := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		publishedAt = ts.UTC()
	}

	return &model.Paper{
		Source:      model.PaperSourceArxiv,
		SourceID:    sourceID,
		Title:       collapseWhitespace(entry.Title),
		Abstract:    collapseWhitespace(entry.Summary),
		Authors:     authors,
		Categories:  categories,
		PublishedAt: publishedAt,
	}
}

// collapseWhitespace folds the hard-wrapped lines the Atom feed ships
// into single-space separated text.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
