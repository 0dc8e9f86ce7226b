// Package cache provides the report cache behind a small interface with
// three interchangeable backends: in-process memory, Redis, and a layered
// combination of the two. Values round-trip through JSON in every backend
// so a cache swap never changes read semantics.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the operation set the report layer depends on. TryLock and
// Unlock implement a best-effort mutex for deduplicating background
// recomputation.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
