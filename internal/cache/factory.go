// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL switches to the Redis backend when non-empty.
	RedisURL string

	// Prefix is the Redis key prefix (ignored for the memory backend).
	Prefix string

	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration

	// MaxSize bounds the memory backend (0 = unlimited).
	MaxSize int
}

// New creates a cache from options. When Redis is configured but
// unreachable, it logs the failure and falls back to the in-memory backend
// so the site stays up.
func New(opts Options) Cache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}

	if opts.RedisURL != "" {
		c, err := NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
		if err == nil {
			slog.Info("using redis cache", "prefix", opts.Prefix)
			return c
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: time.Minute,
	})
}
