package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

type weatherQuery struct {
	Hours int `form:"hours" binding:"omitempty,min=1,max=240"`
}

type compareRequest struct {
	VenueIDs []string `json:"venue_ids" binding:"required,min=1,max=20,dive,required"`
	Hours    int      `json:"hours" binding:"omitempty,min=1,max=240"`
}

func (s *HTTPServerAdapter) handleListVenues(c *gin.Context) {
	venues, err := s.venues.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list venues", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, venues)
}

func (s *HTTPServerAdapter) handleVenueWeather(c *gin.Context) {
	var query weatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, errors.NewValidationError("invalid hours parameter: "+err.Error()))
		return
	}

	v, err := s.venues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	data := s.weather.GetVenueWeather(c.Request.Context(), v, query.Hours)
	if data == nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "forecast unavailable"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *HTTPServerAdapter) handleRecommendation(c *gin.Context) {
	var query weatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, errors.NewValidationError("invalid hours parameter: "+err.Error()))
		return
	}

	v, err := s.venues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	data := s.weather.GetVenueWeather(c.Request.Context(), v, query.Hours)
	if data == nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "forecast unavailable"})
		return
	}
	c.JSON(http.StatusOK, s.weather.GetSailingRecommendation(data))
}

func (s *HTTPServerAdapter) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.NewValidationError("invalid compare request: "+err.Error()))
		return
	}

	venues := make([]venue.Venue, 0, len(req.VenueIDs))
	for _, id := range req.VenueIDs {
		v, err := s.venues.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		venues = append(venues, v)
	}

	results := s.weather.CompareVenueWeather(c.Request.Context(), venues)

	// Venues whose aggregation failed are reported explicitly as null.
	payload := make(map[string]*forecast.WeatherData, len(results))
	for id, data := range results {
		payload[id] = data
	}
	c.JSON(http.StatusOK, payload)
}

func (s *HTTPServerAdapter) handleClearCache(c *gin.Context) {
	if err := s.weather.ClearCache(c.Request.Context()); err != nil {
		s.logger.Error("failed to clear cache", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cache cleared"})
}

func (s *HTTPServerAdapter) handleCacheStats(c *gin.Context) {
	stats, err := s.weather.GetCacheStats(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to read cache stats", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
