package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), BlobKey("HEAD", "a.go"), "package a\n", DefaultExpiration)

	got, ok := cache.Get(context.Background(), BlobKey("HEAD", "a.go"))
	require.True(t, ok)
	require.Equal(t, "package a\n", got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("key", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "key")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "key", "value", 20*time.Millisecond)

	time.Sleep(40 * time.Millisecond)

	_, ok := cache.Get(context.Background(), "key")
	require.False(t, ok)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "key", "value", 50*time.Millisecond)

	got, ok := cache.GetWithRefresh(ctx, "key", time.Minute)
	require.True(t, ok)
	require.Equal(t, "value", got)

	time.Sleep(80 * time.Millisecond)

	got, ok = cache.Get(ctx, "key")
	require.True(t, ok, "refresh should have extended the ttl")
	require.Equal(t, "value", got)

	_, ok = cache.GetWithRefresh(ctx, "missing", time.Minute)
	require.False(t, ok)
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("blobs", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx))
	require.Equal(t, 3, cache.cache.ItemCount())

	require.NoError(t, cache.Delete(ctx, "a", "b"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	got, ok := cache.Get(ctx, "c")
	require.True(t, ok)
	require.Equal(t, "3", got)
}

func TestBlobKey(t *testing.T) {
	require.Equal(t, "worktree:a.go", BlobKey("", "a.go"))
	require.Equal(t, "blob:HEAD~1:a.go", BlobKey("HEAD~1", "a.go"))
	require.NotEqual(t, BlobKey("", "a.go"), BlobKey("HEAD", "a.go"))
}
