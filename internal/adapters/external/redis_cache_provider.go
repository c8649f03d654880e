package external

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kevindenney/regattaflow-weather/internal/config"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

// keyPattern scopes Keys/Clear so shared redis instances are not disturbed
const keyPattern = "forecast:*"

// RedisCacheProviderAdapter implements the CacheProvider port using Redis
type RedisCacheProviderAdapter struct {
	client *redis.Client
}

// NewRedisCacheProviderAdapter creates a Redis cache provider and verifies
// connectivity before returning.
func NewRedisCacheProviderAdapter(cfg *config.RedisConfig) (*RedisCacheProviderAdapter, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", err)
	}

	return &RedisCacheProviderAdapter{client: client}, nil
}

func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewCacheError("redis get operation failed", err)
	}

	return []byte(val), nil
}

func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.NewCacheError("redis set operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.NewCacheError("redis delete operation failed", err)
	}
	return nil
}

// Keys scans for forecast keys only
func (r *RedisCacheProviderAdapter) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	iter := r.client.Scan(ctx, 0, keyPattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewCacheError("redis scan operation failed", err)
	}
	return keys, nil
}

// Clear removes forecast keys only
func (r *RedisCacheProviderAdapter) Clear(ctx context.Context) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.NewCacheError("redis clear operation failed", err)
	}
	return nil
}

// Close releases the underlying client
func (r *RedisCacheProviderAdapter) Close() error {
	return r.client.Close()
}
