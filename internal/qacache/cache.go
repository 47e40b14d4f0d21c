// Package qacache is a Redis answer cache keyed by collection and question.
// A hit skips the embedding, retrieval, and completion calls entirely.
package qacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "qa:"

// Entry is a cached answer together with its provenance.
type Entry struct {
	Answer     string    `json:"answer"`
	SourcePath string    `json:"source_path,omitempty"`
	SourcePage int       `json:"source_page,omitempty"`
	CachedAt   time.Time `json:"cached_at"`
}

// Cache caches answers per (collection, question) pair.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a cache. redisClient may be nil, which disables caching.
func New(redisClient *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{redis: redisClient, ttl: ttl}
}

// Get returns the cached entry for a question, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, collection, question string) (*Entry, error) {
	if c == nil || c.redis == nil {
		return nil, nil
	}
	raw, err := c.redis.Get(ctx, cacheKey(collection, question)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("qacache: get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A corrupt entry is treated as a miss so the pipeline can rewrite it.
		return nil, nil
	}
	return &entry, nil
}

// Save stores an answer for a question.
func (c *Cache) Save(ctx context.Context, collection, question string, entry Entry) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("qacache: marshal: %w", err)
	}
	if err := c.redis.Set(ctx, cacheKey(collection, question), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("qacache: save: %w", err)
	}
	return nil
}

// cacheKey folds case and whitespace so trivially rephrased questions share an
// entry.
func cacheKey(collection, question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	return keyPrefix + collection + "::" + normalized
}
