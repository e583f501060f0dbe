// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer for public content responses.
// Two backends are available: an in-memory cache for single-node
// deployments and Redis for anything behind a load balancer.
package cache

import (
	"context"
	"time"
)

// Cache is implemented by all backends. Values are []byte so the same
// interface works for in-process and Redis caches. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero TTL uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix. Used to
	// invalidate all listing variants of an entity after a write.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StatsProvider is an optional interface for caches that track statistics.
type StatsProvider interface {
	Stats() Stats
}

// Stats holds cache hit/miss counters.
type Stats struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Sets   int64   `json:"sets"`
	Items  int     `json:"items"`
	Rate   float64 `json:"hitRate"`
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
