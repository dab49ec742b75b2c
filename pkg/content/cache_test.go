// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"testing"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestCachedSourceMissThenHit(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	backend := &fakeSource{}
	cache := NewCachedSource(backend, client, time.Minute)

	payload, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(backend.fetches) != 1 {
		t.Fatalf("backend fetch count = %d, expected 1", len(backend.fetches))
	}

	// Second fetch must come from the cache.
	cached, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(backend.fetches) != 1 {
		t.Errorf("backend fetch count = %d, expected cache hit", len(backend.fetches))
	}
	if string(cached) != string(payload) {
		t.Errorf("cached payload = %s, expected %s", cached, payload)
	}
}

func TestCachedSourceKeysPerFormat(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	backend := &fakeSource{}
	cache := NewCachedSource(backend, client, time.Minute)

	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatText); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := cache.Fetch(ctx, "doc-2", classify.FormatQuiz); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(backend.fetches) != 3 {
		t.Errorf("backend fetch count = %d, expected 3 distinct keys", len(backend.fetches))
	}
}

func TestCachedSourceTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	backend := &fakeSource{}
	cache := NewCachedSource(backend, client, time.Minute)

	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// Expire the entry and fetch again: the backend must be consulted.
	mr.FastForward(2 * time.Minute)
	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(backend.fetches) != 2 {
		t.Errorf("backend fetch count = %d, expected refetch after TTL", len(backend.fetches))
	}
}

func TestCachedSourceBackendFailure(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	backend := &fakeSource{fail: true}
	cache := NewCachedSource(backend, client, time.Minute)

	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz); err == nil {
		t.Fatal("Fetch() expected backend error, got nil")
	}

	// A failed fetch must not leave a poisoned cache entry behind.
	if mr.Exists(cacheKey("doc-1", classify.FormatQuiz)) {
		t.Error("cache entry written for a failed fetch")
	}
}

func TestCachedSourceDegradesWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)

	backend := &fakeSource{}
	cache := NewCachedSource(backend, client, time.Minute)

	// Cache unreachable: fetches still succeed straight from the backend.
	mr.Close()
	payload, err := cache.Fetch(context.Background(), "doc-1", classify.FormatQuiz)
	if err != nil {
		t.Fatalf("Fetch() error = %v, expected degradation to backend", err)
	}
	if len(payload) == 0 {
		t.Error("empty payload from degraded fetch")
	}
}

func TestInvalidate(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	backend := &fakeSource{}
	cache := NewCachedSource(backend, client, time.Minute)

	for _, f := range []classify.Format{classify.FormatQuiz, classify.FormatText} {
		if _, err := cache.Fetch(ctx, "doc-1", f); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}

	if err := cache.Invalidate(ctx, "doc-1"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	if _, err := cache.Fetch(ctx, "doc-1", classify.FormatQuiz); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(backend.fetches) != 3 {
		t.Errorf("backend fetch count = %d, expected refetch after invalidation", len(backend.fetches))
	}
}
