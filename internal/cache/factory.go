// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes a cache backend.
type Config struct {
	Backend         string
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// New builds the configured cache. When Redis is unreachable it logs a
// warning and returns a memory cache instead.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NoOpCache{}, nil
	case BackendMemory:
		return NewMemoryCache(cfg.CleanupInterval), nil
	case BackendRedis:
		rc, err := NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).
				Str("event", "cache.redis_fallback").
				Str("addr", cfg.Redis.Addr).
				Msg("redis unavailable, falling back to memory cache")
			return NewMemoryCache(cfg.CleanupInterval), nil
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
