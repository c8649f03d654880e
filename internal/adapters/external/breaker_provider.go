package external

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kevindenney/regattaflow-weather/internal/core/forecast"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

// BreakerProvider decorates a live provider with a circuit breaker so a
// failing upstream is shed quickly instead of stalling every fan-out batch on
// its timeout. An open circuit surfaces as a network-class error, which the
// aggregator already recovers from via simulation.
type BreakerProvider struct {
	inner   forecast.LiveForecastProvider
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

// BreakerSettings tunes the circuit breaker
type BreakerSettings struct {
	MaxFailures int
	Cooldown    time.Duration
}

func NewBreakerProvider(inner forecast.LiveForecastProvider, settings BreakerSettings, log *logger.Logger) *BreakerProvider {
	maxFailures := uint32(5)
	if settings.MaxFailures > 0 {
		maxFailures = uint32(settings.MaxFailures)
	}
	cooldown := time.Minute
	if settings.Cooldown > 0 {
		cooldown = settings.Cooldown
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    inner.ProviderName(),
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("provider circuit state changed",
				"provider", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerProvider{
		inner:   inner,
		breaker: breaker,
		logger:  log,
	}
}

func (b *BreakerProvider) ProviderName() string {
	return b.inner.ProviderName()
}

func (b *BreakerProvider) GetPointForecast(ctx context.Context, coords venue.Coordinates, at time.Time) (*forecast.ForecastSample, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.GetPointForecast(ctx, coords, at)
	})
	if err != nil {
		return nil, b.classify(err)
	}
	sample, _ := result.(*forecast.ForecastSample)
	return sample, nil
}

func (b *BreakerProvider) GetRangedForecast(ctx context.Context, coords venue.Coordinates, hours int) ([]forecast.ForecastSample, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.GetRangedForecast(ctx, coords, hours)
	})
	if err != nil {
		return nil, b.classify(err)
	}
	samples, _ := result.([]forecast.ForecastSample)
	return samples, nil
}

// classify keeps provider error types intact and maps breaker-internal
// errors onto the network class.
func (b *BreakerProvider) classify(err error) error {
	if errors.IsProviderError(err) {
		return err
	}
	return errors.NewProviderNetworkError("provider circuit rejected call", err)
}
