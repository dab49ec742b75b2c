// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// HTTPSourceConfig configures the content backend client.
type HTTPSourceConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// HTTPSource fetches per-format payloads from the content rendering backend
// over HTTP. Fetches are idempotent on the backend, so transient failures
// (network errors, 5xx) are retried with exponential backoff; client errors
// (4xx) fail immediately.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	cfg     HTTPSourceConfig
}

// NewHTTPSource creates a content source client. Zero config fields get
// sensible defaults.
func NewHTTPSource(cfg HTTPSourceConfig) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("content source base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
	}, nil
}

// Fetch retrieves the rendered payload for a document in the given format.
func (s *HTTPSource) Fetch(ctx context.Context, documentID string, format classify.Format) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/render?format=%s",
		s.baseURL, url.PathEscape(documentID), url.QueryEscape(string(format)))

	timer := prometheus.NewTimer(metrics.FetchDuration)
	defer timer.ObserveDuration()

	var payload json.RawMessage

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.MaxRetries), ctx)

	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			logrus.Warnf("content fetch failed for document %s (%s): %v, retrying...", documentID, format, err)
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			payload = json.RawMessage(body)
			return nil
		case resp.StatusCode >= 500:
			logrus.Warnf("content backend returned %d for document %s (%s), retrying...",
				resp.StatusCode, documentID, format)
			return fmt.Errorf("content backend returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("content backend returned %d", resp.StatusCode))
		}
	}, policy)

	if err != nil {
		return nil, err
	}
	return payload, nil
}
