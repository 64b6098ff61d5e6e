// Package cache stores canonicalization results keyed by algorithm and input digest.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for canonical result storage.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases the underlying connection.
	Close() error
}

// Key derives the cache key for canonicalizing input with the given options.
func Key(algorithm, hash, format string, input []byte) string {
	sum := sha256.Sum256(input)
	return "rdfc:" + algorithm + ":" + hash + ":" + format + ":" + hex.EncodeToString(sum[:])
}

// NullCache is a Cache that never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() NullCache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Close() error { return nil }
