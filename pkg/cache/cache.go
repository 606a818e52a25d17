// Package cache stores generated artifacts keyed by the design they were
// generated from.
//
// Artifacts (main.rs, Cargo.toml, SVG diagrams) are pure functions of a design
// snapshot and a few options, so the key is a hash of the canonical snapshot
// JSON plus the options. Three backends implement [Cache]:
//   - [NullCache]: never stores anything
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// [Load] wraps the common read-through pattern and reports hits, misses and
// writes to the observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/panecraft/pkg/observability"
)

// DefaultTTL is how long artifacts stay cached when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Load returns the cached value for key, or computes it with fn and stores
// the result. keyType labels the lookup for metrics. A failing cache read is
// treated as a miss and a failing write is ignored; only fn errors are
// returned.
func Load(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
