package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kevindenney/regattaflow-weather/internal/config"
	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

const (
	providerName = "stormglass"

	msToKnots = 1.9438445

	requestedParams = "windSpeed,windDirection,gust,waveHeight,wavePeriod,waveDirection," +
		"currentSpeed,currentDirection,airTemperature,waterTemperature,visibility," +
		"pressure,humidity,precipitation,cloudCover"
)

// StormglassProvider implements forecast.LiveForecastProvider against a
// Stormglass-compatible marine weather API. Quota exhaustion (HTTP 402/429)
// is reported as a distinct, recoverable error class.
type StormglassProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewStormglassProvider(cfg *config.ProviderConfig) *StormglassProvider {
	return &StormglassProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (p *StormglassProvider) ProviderName() string {
	return providerName
}

// sgValue holds a reading keyed by upstream source model
type sgValue map[string]float64

// reading prefers the provider's own blended value, falling back to any source
func (v sgValue) reading() *float64 {
	if v == nil {
		return nil
	}
	if sg, ok := v["sg"]; ok {
		return &sg
	}
	for _, val := range v {
		return &val
	}
	return nil
}

type sgHour struct {
	Time             time.Time `json:"time"`
	WindSpeed        sgValue   `json:"windSpeed"`
	WindDirection    sgValue   `json:"windDirection"`
	Gust             sgValue   `json:"gust"`
	WaveHeight       sgValue   `json:"waveHeight"`
	WavePeriod       sgValue   `json:"wavePeriod"`
	WaveDirection    sgValue   `json:"waveDirection"`
	CurrentSpeed     sgValue   `json:"currentSpeed"`
	CurrentDirection sgValue   `json:"currentDirection"`
	AirTemperature   sgValue   `json:"airTemperature"`
	WaterTemperature sgValue   `json:"waterTemperature"`
	Visibility       sgValue   `json:"visibility"`
	Pressure         sgValue   `json:"pressure"`
	Humidity         sgValue   `json:"humidity"`
	Precipitation    sgValue   `json:"precipitation"`
	CloudCover       sgValue   `json:"cloudCover"`
}

type sgResponse struct {
	Hours []sgHour `json:"hours"`
}

// GetRangedForecast fetches hourly samples covering the whole horizon in one
// batch call.
func (p *StormglassProvider) GetRangedForecast(ctx context.Context, coords venue.Coordinates, hours int) ([]forecast.ForecastSample, error) {
	now := time.Now().UTC()
	response, err := p.fetch(ctx, coords, now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}

	samples := make([]forecast.ForecastSample, 0, len(response.Hours))
	for _, h := range response.Hours {
		samples = append(samples, toSample(h))
	}
	return samples, nil
}

// GetPointForecast fetches the sample closest to the requested instant,
// returning nil when the provider has nothing for it.
func (p *StormglassProvider) GetPointForecast(ctx context.Context, coords venue.Coordinates, at time.Time) (*forecast.ForecastSample, error) {
	response, err := p.fetch(ctx, coords, at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		return nil, err
	}
	if len(response.Hours) == 0 {
		return nil, nil
	}

	best := response.Hours[0]
	bestDiff := absDuration(best.Time.Sub(at))
	for _, h := range response.Hours[1:] {
		if diff := absDuration(h.Time.Sub(at)); diff < bestDiff {
			best = h
			bestDiff = diff
		}
	}

	sample := toSample(best)
	return &sample, nil
}

func (p *StormglassProvider) fetch(ctx context.Context, coords venue.Coordinates, start, end time.Time) (*sgResponse, error) {
	url := fmt.Sprintf("%s/weather/point?lat=%f&lng=%f&params=%s&start=%d&end=%d",
		p.baseURL, coords.Latitude, coords.Longitude, requestedParams, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewProviderNetworkError("failed to build provider request", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		// Timeouts land here and are treated like any other network failure.
		return nil, errors.NewProviderNetworkError("provider request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		return nil, errors.NewProviderQuotaError(
			fmt.Sprintf("provider quota exceeded (status %d)", resp.StatusCode), nil)
	default:
		return nil, errors.NewProviderNetworkError(
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	}

	var response sgResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.NewProviderNetworkError("failed to decode provider response", err)
	}
	return &response, nil
}

func toSample(h sgHour) forecast.ForecastSample {
	sample := forecast.ForecastSample{
		Timestamp:           h.Time,
		WindGustKts:         knots(h.Gust.reading()),
		WaveHeightM:         h.WaveHeight.reading(),
		WavePeriodS:         h.WavePeriod.reading(),
		WaveDirectionDeg:    h.WaveDirection.reading(),
		CurrentSpeedKts:     knots(h.CurrentSpeed.reading()),
		CurrentDirectionDeg: h.CurrentDirection.reading(),
		WaterTempC:          h.WaterTemperature.reading(),
		VisibilityKm:        h.Visibility.reading(),
		PressureHPa:         h.Pressure.reading(),
		HumidityPct:         h.Humidity.reading(),
		PrecipitationMMH:    h.Precipitation.reading(),
		CloudCoverPct:       h.CloudCover.reading(),
	}

	if v := h.WindSpeed.reading(); v != nil {
		sample.WindSpeedKts = *v * msToKnots
	}
	if v := h.WindDirection.reading(); v != nil {
		sample.WindDirectionDeg = *v
	}
	if v := h.AirTemperature.reading(); v != nil {
		sample.AirTempC = *v
	}
	return sample
}

// knots converts an optional m/s reading to knots
func knots(ms *float64) *float64 {
	if ms == nil {
		return nil
	}
	kts := *ms * msToKnots
	return &kts
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
