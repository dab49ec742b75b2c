// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d (must be 1-65535)", c.HTTPPort)
	}

	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 1-65535)", c.MetricsPort)
	}

	if c.ContentSourceURL == "" {
		return fmt.Errorf("CONTENT_SOURCE_URL is required")
	}

	if c.ContentFetchTimeout < 1 {
		return fmt.Errorf("invalid CONTENT_FETCH_TIMEOUT_MS: %d (must be positive)", c.ContentFetchTimeout)
	}

	if c.ContentFetchRetries < 0 {
		return fmt.Errorf("invalid CONTENT_FETCH_RETRIES: %d (must be >= 0)", c.ContentFetchRetries)
	}

	return nil
}
