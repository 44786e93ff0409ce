// Package cachemanager provides a TTL cache and a read-through wrapper used to avoid
// re-reading the same git blob while diffing a changeset.
package cachemanager

import (
	"context"
	"time"
)

type CacheManager[K comparable, V any] interface {
	// GetWithRefresh returns the value for key and, on a hit, restarts its ttl.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
}

// BlobKey is the cache key for a file at a ref. An empty ref means the working tree.
func BlobKey(ref, path string) string {
	if ref == "" {
		return "worktree:" + path
	}
	return "blob:" + ref + ":" + path
}
