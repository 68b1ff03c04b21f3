// Package cache stores fetched data-source responses and rendered plot
// artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: hashed files under a directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: stores nothing
//
// Keys are built by a [Keyer] so that the response and artifact namespaces
// never collide, and can be prefixed per deployment with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing. It backs --no-cache runs and the "none" backend.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
