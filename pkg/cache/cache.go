// Package cache provides pluggable byte caches and cache key generation
// for the layout pipeline and the API server.
//
// Three backends are provided: FileCache for CLI usage, RedisCache for the
// server deployment, and NullCache to disable caching. Keys are built by a
// Keyer so server deployments can scope them per tenant with ScopedKeyer.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage. Graphs change only when the upstream
// snapshot changes; layouts are a pure function of (graph, canvas,
// options) and could live forever, but a TTL bounds stale-format
// retention across releases.
const (
	TTLSnapshot = 24 * time.Hour
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures. A ttl of 0 in Set means no
// expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
