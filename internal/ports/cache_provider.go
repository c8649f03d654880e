// Package ports defines the byte-level contracts implemented by
// infrastructure adapters.
package ports

import (
	"context"
	"time"
)

// CacheProvider defines the contract for caching operations. Values are
// opaque bytes; typed adapters handle serialization on top.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// CacheMetrics records hit/miss outcomes for a cache backend
type CacheMetrics interface {
	RecordHit()
	RecordMiss()
}
