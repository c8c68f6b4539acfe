package redis

import (
	"context"
	"strings"
	"time"
)

// ContextCache stores generated brain-context explanations keyed by the
// normalized term, so repeated lookups skip the LLM entirely.
type ContextCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewContextCache(client RedisClient, ttl time.Duration) *ContextCache {
	return &ContextCache{client: client, ttl: ttl}
}

func contextKey(term string) string {
	return "brain_context:" + strings.ToLower(strings.TrimSpace(term))
}

// Get returns the cached explanation Markdown, or "" on a miss.
func (c *ContextCache) Get(ctx context.Context, term string) (string, error) {
	v, err := c.client.Get(ctx, contextKey(term))
	if err != nil {
		if IsCacheMiss(err) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (c *ContextCache) Set(ctx context.Context, term, markdown string) error {
	return c.client.Set(ctx, contextKey(term), markdown, c.ttl)
}
