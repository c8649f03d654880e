package external

import (
	"context"
	"sync"
	"time"

	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

const sweepInterval = 5 * time.Minute

// MemoryCacheProvider is a mutex-guarded in-process cache. A background
// sweeper reclaims expired entries so write-once keys do not pin memory until
// process restart.
type MemoryCacheProvider struct {
	data   map[string]memoryCacheItem
	mutex  sync.RWMutex
	stopCh chan struct{}
	once   sync.Once
}

type memoryCacheItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCacheProvider() *MemoryCacheProvider {
	cache := &MemoryCacheProvider{
		data:   make(map[string]memoryCacheItem),
		stopCh: make(chan struct{}),
	}
	go cache.sweep()
	return cache
}

func (c *MemoryCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		return nil, errors.NewNotFoundError("cache miss")
	}

	return item.data, nil
}

func (c *MemoryCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = memoryCacheItem{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *MemoryCacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Keys returns the unexpired keys currently held
func (c *MemoryCacheProvider) Keys(ctx context.Context) ([]string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(c.data))
	for key, item := range c.data {
		if now.After(item.expiresAt) {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (c *MemoryCacheProvider) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]memoryCacheItem)
	return nil
}

// Stop terminates the background sweeper
func (c *MemoryCacheProvider) Stop() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

func (c *MemoryCacheProvider) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpiredEntries()
		case <-c.stopCh:
			return
		}
	}
}

func (c *MemoryCacheProvider) removeExpiredEntries() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.data {
		if now.After(item.expiresAt) {
			delete(c.data, key)
		}
	}
}
