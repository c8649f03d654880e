// Package app is the composition root: it builds every adapter and injects
// them into the forecast service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kevindenney/regattaflow-weather/internal/adapters/api"
	"github.com/kevindenney/regattaflow-weather/internal/adapters/database"
	"github.com/kevindenney/regattaflow-weather/internal/adapters/external"
	"github.com/kevindenney/regattaflow-weather/internal/adapters/infrastructure"
	"github.com/kevindenney/regattaflow-weather/internal/config"
	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/model"
	"github.com/kevindenney/regattaflow-weather/internal/ports"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

type Application struct {
	config  *config.Config
	logger  *logger.Logger
	service *forecast.Service
	venues  *database.VenueRepository

	httpServer *http.Server
	router     *gin.Engine
	db         *gorm.DB
	memCache   *external.MemoryCacheProvider
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the application from an explicit config,
// used by tests to wire throwaway instances.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	app := &Application{
		config: cfg,
		logger: log,
	}

	if err := app.initializeStorage(); err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	if err := app.initializeService(); err != nil {
		return nil, fmt.Errorf("initialize forecast service: %w", err)
	}
	if err := app.initializeHTTP(); err != nil {
		return nil, fmt.Errorf("initialize HTTP adapter: %w", err)
	}

	return app, nil
}

func (a *Application) initializeStorage() error {
	db, err := database.NewConnection(a.config.Database)
	if err != nil {
		return err
	}
	a.db = db
	a.venues = database.NewVenueRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.venues.Seed(ctx, database.DefaultVenues()); err != nil {
		return err
	}
	return nil
}

func (a *Application) initializeService() error {
	metrics := infrastructure.NewMetricsCollector()

	cacheProvider, err := a.buildCacheProvider()
	if err != nil {
		return err
	}

	cache, err := external.NewForecastCacheAdapter(external.ForecastCacheDeps{
		Provider: cacheProvider,
		TTL:      time.Duration(a.config.Cache.TTLMinutes) * time.Minute,
		Metrics:  metrics,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	aggregator, err := forecast.NewAggregator(forecast.AggregatorDeps{
		Provider:        a.buildLiveProvider(),
		Logger:          a.logger,
		Metrics:         metrics,
		ProviderTimeout: time.Duration(a.config.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}

	service, err := forecast.NewService(forecast.ServiceDeps{
		Registry:            model.DefaultRegistry(),
		Aggregator:          aggregator,
		Cache:               cache,
		Logger:              a.logger,
		DefaultHorizonHours: a.config.Forecast.DefaultHorizonHours,
	})
	if err != nil {
		return err
	}

	a.service = service
	return nil
}

func (a *Application) buildCacheProvider() (ports.CacheProvider, error) {
	if a.config.Cache.Type == config.CacheTypeRedis {
		return external.NewRedisCacheProviderAdapter(&a.config.Cache.Redis)
	}
	a.memCache = external.NewMemoryCacheProvider()
	return a.memCache, nil
}

func (a *Application) buildLiveProvider() forecast.LiveForecastProvider {
	if a.config.Provider.APIKey == "" {
		a.logger.Warn("no live provider API key configured, every forecast will be simulated")
		return nil
	}

	provider := external.NewStormglassProvider(&a.config.Provider)
	return external.NewBreakerProvider(provider, external.BreakerSettings{
		MaxFailures: a.config.Provider.BreakerMaxFailures,
		Cooldown:    time.Duration(a.config.Provider.BreakerCooldownSeconds) * time.Second,
	}, a.logger)
}

func (a *Application) initializeHTTP() error {
	adapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Weather: a.service,
		Venues:  a.venues,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	a.router = adapter.GetRouter()
	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

func (a *Application) Start() error {
	a.logger.Info("starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

func (a *Application) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down application")

	if a.memCache != nil {
		a.memCache.Stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if a.db != nil {
		if db, err := a.db.DB(); err == nil {
			if err := db.Close(); err != nil {
				a.logger.Warn("error closing database", "error", err)
			}
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

// GetService returns the forecast service for testing
func (a *Application) GetService() *forecast.Service {
	return a.service
}
