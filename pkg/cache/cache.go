// Package cache stores rendered artifacts (scene JSON, SVG, PNG, PDF) so
// repeated renders of an unchanged model are served without recomputing.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one file per entry under a directory (CLI default,
//     ~/.cache/bimtower)
//   - [RedisCache]: a shared Redis instance (HTTP server deployments)
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys come from a [Keyer], which derives them from the model's content
// hash and the render options, so any change to either yields a new key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
