// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

//go:build integration
// +build integration

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// This is a manual integration test for the Redis payload cache
// Run this with: go run -tags integration test_redis_integration.go
// Requires: Redis running on localhost:6379

type countingSource struct {
	calls int
}

func (s *countingSource) Fetch(_ context.Context, documentID string, format classify.Format) (json.RawMessage, error) {
	s.calls++
	return json.RawMessage(fmt.Sprintf(`{"doc":%q,"format":%q}`, documentID, format)), nil
}

func main() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.Infof("Starting Redis payload cache integration test...")

	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer client.Close()

	backend := &countingSource{}
	cache := content.NewCachedSource(backend, client, 30*time.Second)

	testDocID := fmt.Sprintf("test-doc-%d", time.Now().Unix())
	logrus.Infof("Testing with document ID: %s", testDocID)

	// Test 1: cold fetch goes to the backend
	logrus.Infof("\n=== Test 1: Cold fetch ===")
	payload1, err := cache.Fetch(ctx, testDocID, classify.FormatQuiz)
	if err != nil {
		logrus.Fatalf("Fetch failed: %v", err)
	}
	if backend.calls != 1 {
		logrus.Fatalf("expected 1 backend call, got %d", backend.calls)
	}
	logrus.Infof("✓ Cold fetch hit the backend: %s", payload1)

	// Test 2: warm fetch is served from the cache
	logrus.Infof("\n=== Test 2: Warm fetch ===")
	payload2, err := cache.Fetch(ctx, testDocID, classify.FormatQuiz)
	if err != nil {
		logrus.Fatalf("Fetch failed: %v", err)
	}
	if backend.calls != 1 {
		logrus.Fatalf("expected cache hit, backend was called %d times", backend.calls)
	}
	if string(payload1) != string(payload2) {
		logrus.Fatalf("cached payload differs: %s vs %s", payload1, payload2)
	}
	logrus.Infof("✓ Warm fetch served from cache")

	// Test 3: a different format is cached independently
	logrus.Infof("\n=== Test 3: Per-format keys ===")
	if _, err := cache.Fetch(ctx, testDocID, classify.FormatText); err != nil {
		logrus.Fatalf("Fetch failed: %v", err)
	}
	if backend.calls != 2 {
		logrus.Fatalf("expected 2 backend calls, got %d", backend.calls)
	}
	logrus.Infof("✓ Formats cached under separate keys")

	// Test 4: invalidation drops every format for the document
	logrus.Infof("\n=== Test 4: Invalidation ===")
	if err := cache.Invalidate(ctx, testDocID); err != nil {
		logrus.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := cache.Fetch(ctx, testDocID, classify.FormatQuiz); err != nil {
		logrus.Fatalf("Fetch failed: %v", err)
	}
	if backend.calls != 3 {
		logrus.Fatalf("expected backend call after invalidation, got %d calls", backend.calls)
	}
	logrus.Infof("✓ Invalidation cleared the document's payloads")

	logrus.Infof("\nAll Redis payload cache integration tests passed!")
}
