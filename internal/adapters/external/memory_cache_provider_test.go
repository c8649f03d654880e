package external

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

func newTestMemoryCache(t *testing.T) *MemoryCacheProvider {
	t.Helper()
	cache := NewMemoryCacheProvider()
	t.Cleanup(cache.Stop)
	return cache
}

func TestMemoryCacheProvider_SetAndGet(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forecast:cowes-solent:72h", []byte("payload"), time.Minute))

	val, err := cache.Get(ctx, "forecast:cowes-solent:72h")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
}

func TestMemoryCacheProvider_MissingKey(t *testing.T) {
	cache := newTestMemoryCache(t)

	_, err := cache.Get(context.Background(), "forecast:nope:72h")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestMemoryCacheProvider_Expiry(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forecast:x:6h", []byte("short-lived"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := cache.Get(ctx, "forecast:x:6h")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryCacheProvider_Validation(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))

	assert.True(t, errors.IsValidationError(cache.Set(ctx, "", []byte("v"), time.Minute)))
	assert.True(t, errors.IsValidationError(cache.Set(ctx, "k", nil, time.Minute)))
	assert.True(t, errors.IsValidationError(cache.Set(ctx, "k", []byte("v"), 0)))
	assert.True(t, errors.IsValidationError(cache.Delete(ctx, "")))
}

func TestMemoryCacheProvider_DeleteAndClear(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forecast:a:72h", []byte("a"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forecast:b:72h", []byte("b"), time.Minute))

	require.NoError(t, cache.Delete(ctx, "forecast:a:72h"))
	_, err := cache.Get(ctx, "forecast:a:72h")
	assert.True(t, errors.IsNotFoundError(err))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"forecast:b:72h"}, keys)

	require.NoError(t, cache.Clear(ctx))
	keys, err = cache.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryCacheProvider_ConcurrentAccess(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("forecast:venue-%d:72h", i)
			for j := 0; j < 50; j++ {
				_ = cache.Set(ctx, key, []byte("data"), time.Minute)
				_, _ = cache.Get(ctx, key)
				_, _ = cache.Keys(ctx)
			}
		}()
	}
	wg.Wait()

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 10)
}

func TestMemoryCacheProvider_StopIsIdempotent(t *testing.T) {
	cache := NewMemoryCacheProvider()
	cache.Stop()
	assert.NotPanics(t, cache.Stop)
}
