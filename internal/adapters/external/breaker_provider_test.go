package external

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

type flakyProvider struct {
	err         error
	sample      forecast.ForecastSample
	rangedCalls int
	pointCalls  int
}

func (p *flakyProvider) GetRangedForecast(ctx context.Context, coords venue.Coordinates, hours int) ([]forecast.ForecastSample, error) {
	p.rangedCalls++
	if p.err != nil {
		return nil, p.err
	}
	return []forecast.ForecastSample{p.sample}, nil
}

func (p *flakyProvider) GetPointForecast(ctx context.Context, coords venue.Coordinates, at time.Time) (*forecast.ForecastSample, error) {
	p.pointCalls++
	if p.err != nil {
		return nil, p.err
	}
	return &p.sample, nil
}

func (p *flakyProvider) ProviderName() string {
	return "flaky"
}

func newTestBreaker(inner forecast.LiveForecastProvider, maxFailures int) *BreakerProvider {
	return NewBreakerProvider(inner, BreakerSettings{
		MaxFailures: maxFailures,
		Cooldown:    time.Minute,
	}, logger.NewWithLevel(slog.LevelError))
}

func TestBreakerProvider_PassesThroughSuccess(t *testing.T) {
	inner := &flakyProvider{sample: forecast.ForecastSample{WindSpeedKts: 12}}
	breaker := newTestBreaker(inner, 3)

	samples, err := breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 12.0, samples[0].WindSpeedKts)

	sample, err := breaker.GetPointForecast(context.Background(), testCoords, time.Now())
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, "flaky", breaker.ProviderName())
}

func TestBreakerProvider_PreservesProviderErrorTypes(t *testing.T) {
	inner := &flakyProvider{err: errors.NewProviderQuotaError("quota exceeded", nil)}
	breaker := newTestBreaker(inner, 10)

	_, err := breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.Error(t, err)
	assert.True(t, errors.IsProviderQuotaError(err))

	inner.err = errors.NewProviderNetworkError("timeout", nil)
	_, err = breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.Error(t, err)
	assert.True(t, errors.IsProviderNetworkError(err))
}

func TestBreakerProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{err: errors.NewProviderNetworkError("connection refused", nil)}
	breaker := newTestBreaker(inner, 2)

	for i := 0; i < 2; i++ {
		_, err := breaker.GetRangedForecast(context.Background(), testCoords, 24)
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.rangedCalls)

	// the circuit is open now, the upstream is no longer called
	_, err := breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.Error(t, err)
	assert.True(t, errors.IsProviderNetworkError(err))
	assert.Equal(t, 2, inner.rangedCalls)

	_, err = breaker.GetPointForecast(context.Background(), testCoords, time.Now())
	require.Error(t, err)
	assert.Equal(t, 0, inner.pointCalls)
}

func TestBreakerProvider_SuccessResetsFailureCount(t *testing.T) {
	inner := &flakyProvider{err: errors.NewProviderNetworkError("blip", nil)}
	breaker := newTestBreaker(inner, 3)

	_, err := breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.Error(t, err)

	inner.err = nil
	_, err = breaker.GetRangedForecast(context.Background(), testCoords, 24)
	require.NoError(t, err)

	inner.err = errors.NewProviderNetworkError("blip", nil)
	for i := 0; i < 2; i++ {
		_, err = breaker.GetRangedForecast(context.Background(), testCoords, 24)
		require.Error(t, err)
	}

	// two consecutive failures since the success, circuit still closed
	inner.err = nil
	_, err = breaker.GetRangedForecast(context.Background(), testCoords, 24)
	assert.NoError(t, err)
}
