// Package cache provides byte caches for feed pages and computed layouts.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// shared deployments and [NullCache] to disable caching. Keys come from a
// [Keyer] so that the same request maps to the same entry everywhere.
//
// # Usage
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	c = cache.Instrument(c, "page")
//	key := cache.NewDefaultKeyer().PageKey("http://localhost:8080", 0, 50)
//	data, ok, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. A missing or expired entry reports
	// ok=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default lifetimes per entry kind.
const (
	TTLPage     = 10 * time.Minute
	TTLArtifact = 7 * 24 * time.Hour
)
