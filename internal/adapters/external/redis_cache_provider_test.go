package external

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevindenney/regattaflow-weather/internal/config"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

func newTestRedisCache(t *testing.T) (*RedisCacheProviderAdapter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := NewRedisCacheProviderAdapter(&config.RedisConfig{
		Addr:         mr.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = adapter.Close()
	})
	return adapter, mr
}

func TestNewRedisCacheProviderAdapter_NilConfig(t *testing.T) {
	_, err := NewRedisCacheProviderAdapter(nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestNewRedisCacheProviderAdapter_Unreachable(t *testing.T) {
	_, err := NewRedisCacheProviderAdapter(&config.RedisConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 1,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCacheError(err))
}

func TestRedisCacheProvider_SetAndGet(t *testing.T) {
	adapter, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "forecast:cowes-solent:72h", []byte("payload"), time.Minute))

	val, err := adapter.Get(ctx, "forecast:cowes-solent:72h")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
}

func TestRedisCacheProvider_MissingKey(t *testing.T) {
	adapter, _ := newTestRedisCache(t)

	_, err := adapter.Get(context.Background(), "forecast:nope:72h")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRedisCacheProvider_TTL(t *testing.T) {
	adapter, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "forecast:x:6h", []byte("short-lived"), 30*time.Minute))

	mr.FastForward(31 * time.Minute)

	_, err := adapter.Get(ctx, "forecast:x:6h")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRedisCacheProvider_Validation(t *testing.T) {
	adapter, _ := newTestRedisCache(t)
	ctx := context.Background()

	_, err := adapter.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))

	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "", []byte("v"), time.Minute)))
	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "k", nil, time.Minute)))
	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "k", []byte("v"), 0)))
	assert.True(t, errors.IsValidationError(adapter.Delete(ctx, "")))
}

func TestRedisCacheProvider_KeysScopedToForecasts(t *testing.T) {
	adapter, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "forecast:a:72h", []byte("a"), time.Minute))
	require.NoError(t, adapter.Set(ctx, "forecast:b:24h", []byte("b"), time.Minute))
	// an unrelated key sharing the same database
	require.NoError(t, mr.Set("session:user-1", "x"))

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"forecast:a:72h", "forecast:b:24h"}, keys)
}

func TestRedisCacheProvider_ClearLeavesForeignKeys(t *testing.T) {
	adapter, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "forecast:a:72h", []byte("a"), time.Minute))
	require.NoError(t, mr.Set("session:user-1", "x"))

	require.NoError(t, adapter.Clear(ctx))

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.True(t, mr.Exists("session:user-1"))
}

func TestRedisCacheProvider_Delete(t *testing.T) {
	adapter, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "forecast:a:72h", []byte("a"), time.Minute))
	require.NoError(t, adapter.Delete(ctx, "forecast:a:72h"))

	_, err := adapter.Get(ctx, "forecast:a:72h")
	assert.True(t, errors.IsNotFoundError(err))
}
