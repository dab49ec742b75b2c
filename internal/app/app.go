// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/adaptlearn/focus-engine/internal/bootstrap"
	"github.com/adaptlearn/focus-engine/internal/config"
	"github.com/adaptlearn/focus-engine/internal/server"
	"github.com/adaptlearn/focus-engine/pkg/session"
	"github.com/adaptlearn/focus-engine/pkg/tuning"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	sessionManager    *session.Manager
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
// 1. Redis (payload cache, optional)
// 2. Engine tuning (YAML configuration)
// 3. Content source chain (HTTP client + cache)
// 4. Session manager (smoother/arbiter/controller factories)
// 5. Servers (HTTP API, metrics)
// 6. Telemetry (OpenTelemetry tracing)
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Infof("initializing %s (%s)...", cfg.ServiceName, cfg.Environment)

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis (optional payload cache)
	// ============================================================
	if cfg.PayloadCacheEnabled {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
	} else {
		logrus.Info("payload cache disabled, skipping Redis initialization")
	}

	// ============================================================
	// Step 2: Load engine tuning
	// ============================================================
	tuningConfig, err := tuning.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine tuning from %s: %w", cfg.ConfigPath, err)
	}
	logrus.Infof("loaded engine tuning from %s", cfg.ConfigPath)

	// ============================================================
	// Step 3: Content source chain
	// ============================================================
	source, err := bootstrap.InitContentSource(cfg, tuningConfig, app.redisClient)
	if err != nil {
		return nil, err
	}

	// ============================================================
	// Step 4: Session manager
	// ============================================================
	app.sessionManager, err = bootstrap.InitSessionManager(tuningConfig, source)
	if err != nil {
		return nil, fmt.Errorf("failed to init session manager: %w", err)
	}

	// ============================================================
	// Step 5: Setup servers
	// ============================================================
	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, app.sessionManager)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 6: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client used by the payload cache.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}
