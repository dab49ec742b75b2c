// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package tuning

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adaptlearn/focus-engine/pkg/classify"
	"github.com/adaptlearn/focus-engine/pkg/suggest"
	"gopkg.in/yaml.v3"
)

// Config is the decision-engine tuning loaded from YAML. It controls the
// smoothing window, the suggestion debounce and the classifier bands.
type Config struct {
	Smoothing  SmoothingConfig  `yaml:"smoothing"`
	Suggestion SuggestionConfig `yaml:"suggestion"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Cache      CacheConfig      `yaml:"cache"`
}

// SmoothingConfig tunes the raw-sample rolling window.
type SmoothingConfig struct {
	WindowSize int `yaml:"window_size"`
}

// SuggestionConfig tunes the arbiter's debounce behavior.
type SuggestionConfig struct {
	WindowSize        int     `yaml:"window_size"`
	LowFocusThreshold float64 `yaml:"low_focus_threshold"`
	CooldownMs        int     `yaml:"cooldown_ms"`
}

// ClassifierConfig is the ordered threshold table mapping attention signals
// to content formats.
type ClassifierConfig struct {
	Bands    []BandConfig `yaml:"bands"`
	Fallback string       `yaml:"fallback"`
}

// BandConfig is one classifier threshold entry; the band matches signals
// strictly greater than Above.
type BandConfig struct {
	Above  int    `yaml:"above"`
	Format string `yaml:"format"`
}

// CacheConfig tunes the Redis payload cache.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// Default returns the tuning the engine ships with: window of 5, low-focus
// threshold 40, 60s cooldown, and the standard classifier bands.
func Default() *Config {
	bands := make([]BandConfig, 0, 4)
	for _, b := range classify.DefaultBands() {
		bands = append(bands, BandConfig{Above: b.Above, Format: string(b.Format)})
	}
	return &Config{
		Smoothing: SmoothingConfig{WindowSize: 5},
		Suggestion: SuggestionConfig{
			WindowSize:        suggest.DefaultWindowSize,
			LowFocusThreshold: suggest.DefaultLowFocusThreshold,
			CooldownMs:        int(suggest.DefaultCooldown / time.Millisecond),
		},
		Classifier: ClassifierConfig{
			Bands:    bands,
			Fallback: string(classify.FormatInteractive),
		},
		Cache: CacheConfig{TTLSeconds: 900},
	}
}

// Load reads tuning configuration from a YAML file. Missing sections fall
// back to defaults. Supports environment variable expansion in the form
// ${VAR_NAME} or ${VAR_NAME:default}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning config %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	config := Default()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML tuning config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}

	return config, nil
}

// Validate checks the tuning for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Smoothing.WindowSize < 1 {
		return fmt.Errorf("smoothing.window_size must be >= 1, got %d", c.Smoothing.WindowSize)
	}
	if c.Suggestion.WindowSize < 1 {
		return fmt.Errorf("suggestion.window_size must be >= 1, got %d", c.Suggestion.WindowSize)
	}
	if c.Suggestion.LowFocusThreshold <= 0 || c.Suggestion.LowFocusThreshold > 100 {
		return fmt.Errorf("suggestion.low_focus_threshold must be in (0,100], got %v", c.Suggestion.LowFocusThreshold)
	}
	if c.Suggestion.CooldownMs < 0 {
		return fmt.Errorf("suggestion.cooldown_ms must be >= 0, got %d", c.Suggestion.CooldownMs)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}

	// Building the classifier runs the full band validation.
	if _, err := c.BuildClassifier(); err != nil {
		return err
	}
	return nil
}

// BuildClassifier constructs the classifier described by this tuning.
func (c *Config) BuildClassifier() (*classify.Classifier, error) {
	bands := make([]classify.Band, 0, len(c.Classifier.Bands))
	for _, b := range c.Classifier.Bands {
		format, err := classify.ParseFormat(b.Format)
		if err != nil {
			return nil, fmt.Errorf("classifier band above=%d: %w", b.Above, err)
		}
		bands = append(bands, classify.Band{Above: b.Above, Format: format})
	}

	fallback, err := classify.ParseFormat(c.Classifier.Fallback)
	if err != nil {
		return nil, fmt.Errorf("classifier fallback: %w", err)
	}

	return classify.New(bands, fallback)
}

// ArbiterConfig converts the suggestion tuning into the arbiter's config.
func (c *Config) ArbiterConfig() suggest.Config {
	return suggest.Config{
		WindowSize:        c.Suggestion.WindowSize,
		LowFocusThreshold: c.Suggestion.LowFocusThreshold,
		Cooldown:          time.Duration(c.Suggestion.CooldownMs) * time.Millisecond,
	}
}

// CacheTTL returns the payload cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
