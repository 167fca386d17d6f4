// Package cache provides content-addressed caching for parsed architectures
// and computed layout plans. Keys are derived from the document hash plus the
// parameters that shaped the result, so a cache hit is always safe to reuse.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by the file-backed and null
// implementations. A ttl of zero means the entry never expires.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key with the given time-to-live.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
