// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"
	"time"

	"github.com/adaptlearn/focus-engine/internal/config"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/adaptlearn/focus-engine/pkg/session"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
	"github.com/adaptlearn/focus-engine/pkg/tuning"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// InitContentSource builds the content source chain: the HTTP client for
// the rendering backend, wrapped in the Redis payload cache when enabled.
func InitContentSource(cfg *config.Config, tcfg *tuning.Config, redisClient *redis.Client) (content.Source, error) {
	httpSource, err := content.NewHTTPSource(content.HTTPSourceConfig{
		BaseURL:       cfg.ContentSourceURL,
		Timeout:       time.Duration(cfg.ContentFetchTimeout) * time.Millisecond,
		MaxRetries:    uint64(cfg.ContentFetchRetries),
		RetryInterval: time.Duration(cfg.ContentRetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init content source: %w", err)
	}

	if !cfg.PayloadCacheEnabled || redisClient == nil {
		logrus.Info("payload cache disabled, fetching straight from the content source")
		return httpSource, nil
	}

	logrus.Infof("payload cache enabled (ttl=%s)", tcfg.CacheTTL())
	return content.NewCachedSource(httpSource, redisClient, tcfg.CacheTTL()), nil
}

// InitSessionManager assembles the session manager from the engine tuning:
// classifier bands, smoothing window and arbiter debounce settings.
func InitSessionManager(tcfg *tuning.Config, source content.Source) (*session.Manager, error) {
	classifier, err := tcfg.BuildClassifier()
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	manager, err := session.NewManager(session.Dependencies{
		Source:        source,
		Classifier:    classifier,
		Clock:         suggest.SystemClock(),
		SmootherSize:  tcfg.Smoothing.WindowSize,
		ArbiterConfig: tcfg.ArbiterConfig(),
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("initialized session manager (smoothing window=%d, low-focus threshold=%.0f, cooldown=%dms)",
		tcfg.Smoothing.WindowSize, tcfg.Suggestion.LowFocusThreshold, tcfg.Suggestion.CooldownMs)
	return manager, nil
}
