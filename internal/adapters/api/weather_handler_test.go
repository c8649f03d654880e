package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubWeatherService struct {
	data      *forecast.WeatherData
	lastHours int
	clearErr  error
	statsErr  error
	stats     forecast.CacheStats
}

func (s *stubWeatherService) GetVenueWeather(ctx context.Context, v venue.Venue, hoursAhead int) *forecast.WeatherData {
	s.lastHours = hoursAhead
	return s.data
}

func (s *stubWeatherService) CompareVenueWeather(ctx context.Context, venues []venue.Venue) map[string]*forecast.WeatherData {
	results := make(map[string]*forecast.WeatherData, len(venues))
	for _, v := range venues {
		results[v.ID] = s.data
	}
	return results
}

func (s *stubWeatherService) GetSailingRecommendation(weather *forecast.WeatherData) forecast.Recommendation {
	return forecast.Recommend(weather)
}

func (s *stubWeatherService) ClearCache(ctx context.Context) error {
	return s.clearErr
}

func (s *stubWeatherService) GetCacheStats(ctx context.Context) (forecast.CacheStats, error) {
	return s.stats, s.statsErr
}

type stubVenueRegistry struct {
	venues map[string]venue.Venue
}

func (r *stubVenueRegistry) GetByID(ctx context.Context, id string) (venue.Venue, error) {
	v, ok := r.venues[id]
	if !ok {
		return venue.Venue{}, errors.NewNotFoundError("venue not found: " + id)
	}
	return v, nil
}

func (r *stubVenueRegistry) List(ctx context.Context) ([]venue.Venue, error) {
	venues := make([]venue.Venue, 0, len(r.venues))
	for _, v := range r.venues {
		venues = append(venues, v)
	}
	return venues, nil
}

func testWeatherData() *forecast.WeatherData {
	return &forecast.WeatherData{
		VenueID:   "cowes-solent",
		VenueName: "Cowes, The Solent",
		Forecast: []forecast.ForecastPoint{
			{
				Timestamp:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
				Wind:         forecast.Wind{SpeedKts: 15, DirectionDeg: 225, GustKts: 19.5},
				VisibilityKm: 10,
				Condition:    "Moderate Breeze",
				Confidence:   0.9,
				Source:       "stormglass",
			},
		},
		Alerts:      []forecast.Alert{},
		LastUpdated: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, weather *stubWeatherService) *HTTPServerAdapter {
	t.Helper()

	registry := &stubVenueRegistry{venues: map[string]venue.Venue{
		"cowes-solent": {
			ID: "cowes-solent", Name: "Cowes, The Solent",
			Region: "europe", Country: "United Kingdom",
		},
		"sydney-harbour": {
			ID: "sydney-harbour", Name: "Sydney Harbour",
			Region: "oceania", Country: "Australia",
		},
	}}

	server, err := NewHTTPServerAdapter(ServerOptions{
		Weather: weather,
		Venues:  registry,
		Logger:  logger.NewWithLevel(slog.LevelError),
	})
	require.NoError(t, err)
	return server
}

func performRequest(server *HTTPServerAdapter, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.GetRouter().ServeHTTP(w, req)
	return w
}

func TestServerOptions_Validate(t *testing.T) {
	weather := &stubWeatherService{}
	registry := &stubVenueRegistry{}
	log := logger.NewWithLevel(slog.LevelError)

	_, err := NewHTTPServerAdapter(ServerOptions{Venues: registry, Logger: log})
	assert.Error(t, err)
	_, err = NewHTTPServerAdapter(ServerOptions{Weather: weather, Logger: log})
	assert.Error(t, err)
	_, err = NewHTTPServerAdapter(ServerOptions{Weather: weather, Venues: registry})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{})

	w := performRequest(server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestListVenues(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{})

	w := performRequest(server, http.MethodGet, "/api/v1/venues", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var venues []venue.Venue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &venues))
	assert.Len(t, venues, 2)
}

func TestVenueWeather(t *testing.T) {
	weather := &stubWeatherService{data: testWeatherData()}
	server := newTestServer(t, weather)

	w := performRequest(server, http.MethodGet, "/api/v1/venues/cowes-solent/weather?hours=24", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24, weather.lastHours)

	var data forecast.WeatherData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, "cowes-solent", data.VenueID)
	require.Len(t, data.Forecast, 1)
	assert.Equal(t, 15.0, data.Forecast[0].Wind.SpeedKts)
}

func TestVenueWeather_UnknownVenue(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	w := performRequest(server, http.MethodGet, "/api/v1/venues/atlantis/weather", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "atlantis")
}

func TestVenueWeather_InvalidHours(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	for _, query := range []string{"hours=300", "hours=abc"} {
		w := performRequest(server, http.MethodGet, "/api/v1/venues/cowes-solent/weather?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestVenueWeather_AggregationUnavailable(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: nil})

	w := performRequest(server, http.MethodGet, "/api/v1/venues/cowes-solent/weather", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRecommendation(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	w := performRequest(server, http.MethodGet, "/api/v1/venues/cowes-solent/recommendation", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var rec forecast.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.True(t, rec.Recommended)
	assert.NotEmpty(t, rec.BoatClasses)
}

func TestCompare(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	body, _ := json.Marshal(map[string]interface{}{
		"venue_ids": []string{"cowes-solent", "sydney-harbour"},
	})
	w := performRequest(server, http.MethodPost, "/api/v1/weather/compare", body)

	require.Equal(t, http.StatusOK, w.Code)
	var results map[string]*forecast.WeatherData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 2)
	assert.NotNil(t, results["cowes-solent"])
}

func TestCompare_Validation(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	for _, body := range []string{`{}`, `{"venue_ids": []}`, `{"venue_ids": [""]}`, `not json`} {
		w := performRequest(server, http.MethodPost, "/api/v1/weather/compare", []byte(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestCompare_UnknownVenue(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{data: testWeatherData()})

	body, _ := json.Marshal(map[string]interface{}{
		"venue_ids": []string{"cowes-solent", "atlantis"},
	})
	w := performRequest(server, http.MethodPost, "/api/v1/weather/compare", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearCache(t *testing.T) {
	server := newTestServer(t, &stubWeatherService{})

	w := performRequest(server, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClearCache_Failure(t *testing.T) {
	weather := &stubWeatherService{clearErr: errors.NewCacheError("backend down", nil)}
	server := newTestServer(t, weather)

	w := performRequest(server, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCacheStats(t *testing.T) {
	weather := &stubWeatherService{stats: forecast.CacheStats{
		Size: 2,
		Keys: []string{"forecast:a:72h", "forecast:b:72h"},
	}}
	server := newTestServer(t, weather)

	w := performRequest(server, http.MethodGet, "/api/v1/cache/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var stats forecast.CacheStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Size)
	assert.Len(t, stats.Keys, 2)
}
