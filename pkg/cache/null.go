package cache

import (
	"context"
	"time"
)

// NullCache stores nothing: every Get misses and every Set is dropped. It
// stands in for a real backend when caching is off, and Reason says why.
type NullCache struct {
	Reason string
}

// NewNullCache returns a null cache for explicitly disabled caching.
func NewNullCache() Cache {
	return Disabled("caching disabled")
}

// Disabled returns a null cache that records why no backend is in use,
// for example an unreachable Redis server.
func Disabled(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
