package cache

import (
	"context"
	"time"
)

// Cache defines the contract for the cache layer.
// Implementations: Redis (shared across processes) and in-memory (single process).
type Cache interface {
	// Get reads the value under key and unmarshals it into dest.
	// Returns: (found bool, error)
	// - found = true: cache hit, dest holds the value
	// - found = false: cache miss, dest is left untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// GetAndTouch behaves like Get and, on a hit, resets the entry's
	// expiration to ttl. This is what gives entries a sliding expiration.
	GetAndTouch(ctx context.Context, key string, dest interface{}, ttl time.Duration) (bool, error)

	// Set stores value under key with a TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (e.g. "page:tvshow:*")
	DeletePattern(ctx context.Context, pattern string) error

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}
