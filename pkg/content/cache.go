// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCacheTTL is how long a rendered payload stays cached.
	DefaultCacheTTL = 15 * time.Minute
	// cacheKeyPrefix is the prefix for all payload cache keys.
	cacheKeyPrefix = "focus_engine:payload:"
)

// CachedSource decorates a Source with a Redis payload cache. Rendered
// payloads are immutable per document+format, so cache hits skip the backend
// entirely. Cache failures degrade to the underlying source and never fail a
// fetch on their own.
type CachedSource struct {
	next   Source
	client *redis.Client
	ttl    time.Duration
}

// NewCachedSource wraps a source with a Redis cache.
// A TTL of zero falls back to DefaultCacheTTL.
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(documentID string, format classify.Format) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, documentID, format)
}

// Fetch returns the cached payload when present, otherwise falls through to
// the underlying source and populates the cache.
func (c *CachedSource) Fetch(ctx context.Context, documentID string, format classify.Format) (json.RawMessage, error) {
	key := cacheKey(documentID, format)

	data, err := c.client.Get(ctx, key).Result()
	if err == nil {
		logrus.Debugf("payload cache hit for %s", key)
		return json.RawMessage(data), nil
	}
	if err != redis.Nil {
		logrus.Warnf("payload cache read failed for %s: %v", key, err)
	}

	payload, err := c.next.Fetch(ctx, documentID, format)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, []byte(payload), c.ttl).Err(); err != nil {
		logrus.Warnf("payload cache write failed for %s: %v", key, err)
	}

	return payload, nil
}

// Invalidate drops every cached format payload for a document, e.g. after
// the document was re-uploaded.
func (c *CachedSource) Invalidate(ctx context.Context, documentID string) error {
	keys := make([]string, 0, len(classify.AllFormats()))
	for _, f := range classify.AllFormats() {
		keys = append(keys, cacheKey(documentID, f))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate payload cache for document %s: %w", documentID, err)
	}

	logrus.Infof("invalidated payload cache for document %s", documentID)
	return nil
}
