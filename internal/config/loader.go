package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRIDIRON_CONFIG is set
//  3. env (prefix GRIDIRON_), with .env loaded first if present
func Load(_ context.Context) (*Config, error) {
	// A local .env is a convenience for development; a missing file is fine.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GRIDIRON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: GRIDIRON_ADDR, GRIDIRON_K_FACTOR, ...
	// Map env keys like GRIDIRON_K_FACTOR -> k_factor (flat keys).
	envProvider := env.Provider("GRIDIRON_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gridiron_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on configuration that would corrupt a replay.
// It runs before any replay begins; no state is mutated on failure.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.KFactor <= 0:
		return fmt.Errorf("%w: k_factor must be positive, got %v", ErrInvalidConfig, c.KFactor)
	case c.BaseRating <= 0:
		return fmt.Errorf("%w: base_rating must be positive, got %v", ErrInvalidConfig, c.BaseRating)
	case c.HomeAdvantageElo < 0:
		return fmt.Errorf("%w: home_advantage_elo must not be negative, got %v", ErrInvalidConfig, c.HomeAdvantageElo)
	case c.MeanReversionFactor < 0 || c.MeanReversionFactor > 1:
		return fmt.Errorf("%w: mean_reversion_factor must be in [0,1], got %v", ErrInvalidConfig, c.MeanReversionFactor)
	case c.RollingWindowSize <= 0:
		return fmt.Errorf("%w: rolling_window_size must be positive, got %d", ErrInvalidConfig, c.RollingWindowSize)
	case c.ReplayQueueSize <= 0:
		return fmt.Errorf("%w: replay_queue_size must be positive, got %d", ErrInvalidConfig, c.ReplayQueueSize)
	case c.ReplayWorkerCount <= 0:
		return fmt.Errorf("%w: replay_worker_count must be positive, got %d", ErrInvalidConfig, c.ReplayWorkerCount)
	case c.MaxRankingLimit <= 0:
		return fmt.Errorf("%w: max_ranking_limit must be positive, got %d", ErrInvalidConfig, c.MaxRankingLimit)
	}

	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	}
	return nil
}
