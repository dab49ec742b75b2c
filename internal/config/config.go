// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package config

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9090"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"FocusEngine"`

	// ============================================================
	// Content source configuration (REQUIRED)
	// ============================================================
	ContentSourceURL    string `env:"CONTENT_SOURCE_URL,required"`
	ContentFetchTimeout int    `env:"CONTENT_FETCH_TIMEOUT_MS" envDefault:"10000"`
	ContentFetchRetries int    `env:"CONTENT_FETCH_RETRIES" envDefault:"3"`
	ContentRetryDelayMs int    `env:"CONTENT_RETRY_DELAY_MS" envDefault:"500"`
	PayloadCacheEnabled bool   `env:"PAYLOAD_CACHE_ENABLED" envDefault:"true"`

	// ============================================================
	// Redis configuration (payload cache)
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Engine tuning configuration
	// ============================================================
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config/engine.yaml"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ZipkinEndpoint  string `env:"ZIPKIN_ENDPOINT"`
	OtelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"focus-engine"`
}
