// Package api provides the HTTP adapter. It translates requests into core
// use-case calls and maps domain errors onto status codes.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

// WeatherService is the slice of the forecast use case the HTTP adapter needs
type WeatherService interface {
	GetVenueWeather(ctx context.Context, v venue.Venue, hoursAhead int) *forecast.WeatherData
	CompareVenueWeather(ctx context.Context, venues []venue.Venue) map[string]*forecast.WeatherData
	GetSailingRecommendation(weather *forecast.WeatherData) forecast.Recommendation
	ClearCache(ctx context.Context) error
	GetCacheStats(ctx context.Context) (forecast.CacheStats, error)
}

// VenueRegistry resolves venue ids to full venue descriptors
type VenueRegistry interface {
	GetByID(ctx context.Context, id string) (venue.Venue, error)
	List(ctx context.Context) ([]venue.Venue, error)
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Weather WeatherService
	Venues  VenueRegistry
	Logger  *logger.Logger
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Weather == nil {
		return errors.NewValidationError("weather service is required")
	}
	if opts.Venues == nil {
		return errors.NewValidationError("venue registry is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

// HTTPServerAdapter implements the HTTP server using Gin
type HTTPServerAdapter struct {
	router  *gin.Engine
	weather WeatherService
	venues  VenueRegistry
	logger  *logger.Logger
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	server := &HTTPServerAdapter{
		router:  gin.New(),
		weather: opts.Weather,
		venues:  opts.Venues,
		logger:  opts.Logger,
	}
	server.router.Use(gin.Recovery())
	server.setupRoutes()
	return server, nil
}

// GetRouter returns the Gin router, exposed for the http.Server and tests
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

func (s *HTTPServerAdapter) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/venues", s.handleListVenues)
		v1.GET("/venues/:id/weather", s.handleVenueWeather)
		v1.GET("/venues/:id/recommendation", s.handleRecommendation)
		v1.POST("/weather/compare", s.handleCompare)
		v1.DELETE("/cache", s.handleClearCache)
		v1.GET("/cache/stats", s.handleCacheStats)
	}
}

func (s *HTTPServerAdapter) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
