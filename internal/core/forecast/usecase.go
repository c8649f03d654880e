package forecast

import (
	"context"
	"sync"

	"github.com/kevindenney/regattaflow-weather/internal/core/model"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

// CacheStats describes the current cache contents
type CacheStats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Cache is the per-(venue, horizon) forecast cache contract. Entries expire
// by TTL; an expired entry behaves exactly like a miss. Implementations must
// tolerate concurrent get/put; last-writer-wins and duplicate computation on
// a race are both acceptable.
type Cache interface {
	Get(ctx context.Context, venueID string, horizonHours int) (*WeatherData, bool)
	Put(ctx context.Context, venueID string, horizonHours int, data *WeatherData)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}

const defaultHorizonHours = 72

// Service is the engine's entry point for callers. Constructed once by the
// composition root and shared; all mutable state lives in the cache.
type Service struct {
	registry     *model.Registry
	aggregator   *Aggregator
	cache        Cache
	logger       *logger.Logger
	defaultHours int
}

// ServiceDeps carries Service dependencies. Cache may be nil to disable
// caching entirely (used by some tests).
type ServiceDeps struct {
	Registry            *model.Registry
	Aggregator          *Aggregator
	Cache               Cache
	Logger              *logger.Logger
	DefaultHorizonHours int
}

func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Registry == nil {
		return nil, errors.NewValidationError("model registry is required")
	}
	if deps.Aggregator == nil {
		return nil, errors.NewValidationError("aggregator is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.DefaultHorizonHours <= 0 {
		deps.DefaultHorizonHours = defaultHorizonHours
	}

	return &Service{
		registry:     deps.Registry,
		aggregator:   deps.Aggregator,
		cache:        deps.Cache,
		logger:       deps.Logger,
		defaultHours: deps.DefaultHorizonHours,
	}, nil
}

// GetVenueWeather returns the aggregated forecast for a venue, serving from
// cache when a fresh entry exists. It returns nil only when the pipeline hits
// an unrecoverable internal failure; that failure is logged, never propagated,
// so one bad venue cannot sink a batch comparison.
func (s *Service) GetVenueWeather(ctx context.Context, v venue.Venue, hoursAhead int) (data *WeatherData) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("weather aggregation failed",
				"venue", v.ID,
				"error", errors.NewAggregationError("panic during aggregation", nil).Error(),
				"panic", r)
			data = nil
		}
	}()

	if err := v.IsValid(); err != nil {
		s.logger.Warn("rejecting venue", "venue", v.ID, "error", err)
		return nil
	}

	if hoursAhead <= 0 {
		hoursAhead = s.defaultHours
	}
	horizon := ClampHorizon(hoursAhead)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, v.ID, horizon); ok {
			s.logger.Debug("forecast served from cache", "venue", v.ID, "horizon_hours", horizon)
			return cached
		}
	}

	models := s.registry.SelectModels(v)
	data = s.aggregator.Aggregate(ctx, v, models, horizon)

	if s.cache != nil && data != nil {
		s.cache.Put(ctx, v.ID, horizon, data)
	}
	return data
}

// CompareVenueWeather resolves several venues concurrently. Each venue is
// independent; a nil entry marks a venue whose aggregation failed.
func (s *Service) CompareVenueWeather(ctx context.Context, venues []venue.Venue) map[string]*WeatherData {
	results := make(map[string]*WeatherData, len(venues))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, v := range venues {
		v := v
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := s.GetVenueWeather(ctx, v, 0)
			mu.Lock()
			results[v.ID] = data
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// GetSailingRecommendation classifies current conditions for sailing
func (s *Service) GetSailingRecommendation(weather *WeatherData) Recommendation {
	return Recommend(weather)
}

// ClearCache drops every cached forecast
func (s *Service) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// GetCacheStats reports cache size and keys
func (s *Service) GetCacheStats(ctx context.Context) (CacheStats, error) {
	if s.cache == nil {
		return CacheStats{Keys: []string{}}, nil
	}
	return s.cache.Stats(ctx)
}
