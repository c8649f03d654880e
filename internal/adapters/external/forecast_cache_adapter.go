package external

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/ports"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

// ForecastCacheAdapter implements forecast.Cache on top of a byte-level
// CacheProvider. Every value is wrapped in an envelope carrying its creation
// time; freshness is checked against the injected clock on every read, so an
// entry past its TTL behaves exactly like a miss regardless of what the
// backend believes.
type ForecastCacheAdapter struct {
	provider ports.CacheProvider
	clock    clockwork.Clock
	ttl      time.Duration
	metrics  ports.CacheMetrics
	logger   *logger.Logger
}

type cacheEnvelope struct {
	CreatedAt time.Time             `json:"created_at"`
	Data      *forecast.WeatherData `json:"data"`
}

// ForecastCacheDeps carries adapter dependencies. Metrics may be nil.
type ForecastCacheDeps struct {
	Provider ports.CacheProvider
	Clock    clockwork.Clock
	TTL      time.Duration
	Metrics  ports.CacheMetrics
	Logger   *logger.Logger
}

func NewForecastCacheAdapter(deps ForecastCacheDeps) (*ForecastCacheAdapter, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("cache provider is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.TTL <= 0 {
		return nil, errors.NewValidationError("cache TTL must be positive")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	return &ForecastCacheAdapter{
		provider: deps.Provider,
		clock:    deps.Clock,
		ttl:      deps.TTL,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}, nil
}

func cacheKey(venueID string, horizonHours int) string {
	return fmt.Sprintf("forecast:%s:%dh", venueID, horizonHours)
}

func (a *ForecastCacheAdapter) Get(ctx context.Context, venueID string, horizonHours int) (*forecast.WeatherData, bool) {
	key := cacheKey(venueID, horizonHours)

	raw, err := a.provider.Get(ctx, key)
	if err != nil {
		a.recordMiss()
		return nil, false
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		a.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		_ = a.provider.Delete(ctx, key)
		a.recordMiss()
		return nil, false
	}

	if a.clock.Now().Sub(envelope.CreatedAt) >= a.ttl || envelope.Data == nil {
		// Expired entries are treated as absent and lazily evicted.
		_ = a.provider.Delete(ctx, key)
		a.recordMiss()
		return nil, false
	}

	a.recordHit()
	return envelope.Data, true
}

func (a *ForecastCacheAdapter) Put(ctx context.Context, venueID string, horizonHours int, data *forecast.WeatherData) {
	if data == nil {
		return
	}

	envelope := cacheEnvelope{
		CreatedAt: a.clock.Now(),
		Data:      data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		a.logger.Warn("failed to encode forecast for cache", "venue", venueID, "error", err)
		return
	}

	key := cacheKey(venueID, horizonHours)
	if err := a.provider.Set(ctx, key, raw, a.ttl); err != nil {
		// Caching is best-effort; aggregation results are still returned.
		a.logger.Warn("failed to cache forecast", "key", key, "error", err)
	}
}

func (a *ForecastCacheAdapter) Clear(ctx context.Context) error {
	return a.provider.Clear(ctx)
}

func (a *ForecastCacheAdapter) Stats(ctx context.Context) (forecast.CacheStats, error) {
	keys, err := a.provider.Keys(ctx)
	if err != nil {
		return forecast.CacheStats{}, errors.NewCacheError("failed to list cache keys", err)
	}
	sort.Strings(keys)
	return forecast.CacheStats{
		Size: len(keys),
		Keys: keys,
	}, nil
}

func (a *ForecastCacheAdapter) recordHit() {
	if a.metrics != nil {
		a.metrics.RecordHit()
	}
}

func (a *ForecastCacheAdapter) recordMiss() {
	if a.metrics != nil {
		a.metrics.RecordMiss()
	}
}
