// Package cache stores pipeline results between runs.
//
// # Overview
//
// A [Cache] maps string keys to opaque byte slices with an optional TTL.
// Three backends are provided:
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are produced by a [Keyer] from content hashes of the design and the
// options that influence a result, so equal inputs always map to the same
// entry. [ScopedKeyer] namespaces the keys of one deployment.
//
// # Cached Stages
//
// The pipeline caches two stages:
//
//	LayoutKey(designHash, operation + target + pair)  -> JSON layout
//	ArtifactKey(layoutHash, format + drawing options) -> SVG/PDF/PNG bytes
//
// Layouts reproduce the tree exactly because module coordinates round-trip
// through JSON without loss.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
