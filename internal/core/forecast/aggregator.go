package forecast

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kevindenney/regattaflow-weather/internal/core/model"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
	"github.com/kevindenney/regattaflow-weather/pkg/logger"
)

// LiveForecastProvider is the contract of the external marine-weather
// provider. A ranged call may fail with a quota error, which the aggregator
// treats as an expected operational condition rather than a bug.
type LiveForecastProvider interface {
	GetPointForecast(ctx context.Context, coords venue.Coordinates, at time.Time) (*ForecastSample, error)
	GetRangedForecast(ctx context.Context, coords venue.Coordinates, hours int) ([]ForecastSample, error)
	ProviderName() string
}

// AggregationMetrics records provider call outcomes and aggregation cost
type AggregationMetrics interface {
	RecordProviderCall(provider, outcome string)
	RecordSimulatedPoints(count int)
	ObserveAggregation(duration time.Duration)
}

// RandFactory yields a fresh pseudo-random source per aggregation call, so
// concurrent aggregations never share a rand and tests can pin a seed.
type RandFactory func() *rand.Rand

// Provider call outcomes reported to metrics. Quota exhaustion is kept
// distinct from transport failure even though recovery is identical.
const (
	OutcomeSuccess = "success"
	OutcomeQuota   = "quota"
	OutcomeNetwork = "network"
)

const (
	// MinHorizonHours and MaxHorizonHours bound the forecast horizon
	MinHorizonHours = 6
	MaxHorizonHours = 240

	// StepInterval is the fixed timeline resolution
	StepInterval = 3 * time.Hour
	// MatchWindow is the maximum distance between a step and a live sample
	MatchWindow = 90 * time.Minute

	gustFactor           = 1.3
	waterTempOffsetC     = 2.0
	defaultHumidityPct   = 60.0
	defaultCloudCoverPct = 50.0
	defaultWavePeriodS   = 6.0
	defaultPrecipMMH     = 0.0

	defaultLiveConfidence = 0.9

	confidenceDecayPerHour = 0.01
	maxConfidenceDecay     = 0.3

	simulatedPrecipChance = 0.15
	simulatedPrecipMaxMMH = 6.0

	defaultProviderTimeout = 10 * time.Second
)

// Aggregator builds fixed-interval forecast timelines, preferring live
// provider samples and falling back to climatology-seeded simulation.
type Aggregator struct {
	provider LiveForecastProvider
	clock    clockwork.Clock
	newRand  RandFactory
	logger   *logger.Logger
	metrics  AggregationMetrics
	timeout  time.Duration
}

// AggregatorDeps carries aggregator dependencies. Provider may be nil, in
// which case every point is simulated. Clock and Rand default to real sources.
type AggregatorDeps struct {
	Provider        LiveForecastProvider
	Clock           clockwork.Clock
	Rand            RandFactory
	Logger          *logger.Logger
	Metrics         AggregationMetrics
	ProviderTimeout time.Duration
}

func NewAggregator(deps AggregatorDeps) (*Aggregator, error) {
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Rand == nil {
		deps.Rand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if deps.ProviderTimeout <= 0 {
		deps.ProviderTimeout = defaultProviderTimeout
	}

	return &Aggregator{
		provider: deps.Provider,
		clock:    deps.Clock,
		newRand:  deps.Rand,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		timeout:  deps.ProviderTimeout,
	}, nil
}

// ClampHorizon bounds a requested horizon to the supported range
func ClampHorizon(hours int) int {
	if hours < MinHorizonHours {
		return MinHorizonHours
	}
	if hours > MaxHorizonHours {
		return MaxHorizonHours
	}
	return hours
}

// Aggregate builds the full WeatherData for a venue. It never fails: when the
// live provider is unreachable, rate-limited, or the venue coordinates are
// unusable, every point is synthesized from climatology with degraded
// confidence.
func (a *Aggregator) Aggregate(ctx context.Context, v venue.Venue, models []model.Descriptor, hoursAhead int) *WeatherData {
	started := a.clock.Now()
	horizon := ClampHorizon(hoursAhead)
	primary := primaryModel(models)
	clim := v.Climatology.Normalized()
	rng := a.newRand()
	now := a.clock.Now()

	live, liveOK := a.fetchLiveSamples(ctx, v, horizon)

	points := make([]ForecastPoint, 0, horizon/3+1)
	simulated := 0
	for h := 0; h <= horizon; h += int(StepInterval.Hours()) {
		ts := now.Add(time.Duration(h) * time.Hour)
		if sample, ok := nearestSample(live, ts); ok {
			points = append(points, a.livePoint(sample, ts))
		} else {
			points = append(points, a.simulatedPoint(rng, clim, primary, h, ts))
			simulated++
		}
	}

	if a.metrics != nil {
		a.metrics.RecordSimulatedPoints(simulated)
	}

	var observation *ForecastPoint
	if liveOK {
		observation = a.fetchObservation(ctx, v, now)
	}

	data := &WeatherData{
		VenueID:     v.ID,
		VenueName:   v.Name,
		Coordinates: v.Coordinates,
		Forecast:    points,
		Alerts:      DeriveAlerts(v, points),
		Marine:      DeriveMarineConditions(points[0]),
		Source:      attribution(models, primary),
		LastUpdated: now,
		Observation: observation,
	}

	if a.metrics != nil {
		a.metrics.ObserveAggregation(a.clock.Now().Sub(started))
	}

	a.logger.Debug("aggregation complete",
		"venue", v.ID,
		"horizon_hours", horizon,
		"points", len(points),
		"simulated", simulated,
		"live", liveOK)

	return data
}

// fetchLiveSamples performs the single ranged provider call. The boolean
// reports whether the provider was reachable at all.
func (a *Aggregator) fetchLiveSamples(ctx context.Context, v venue.Venue, horizon int) ([]ForecastSample, bool) {
	if a.provider == nil {
		return nil, false
	}

	if !v.Coordinates.Valid() {
		// Recovered locally per the error taxonomy: no live attempt is
		// made and every point falls to simulation.
		locErr := errors.NewInvalidLocationError("venue coordinates missing or out of range")
		a.logger.Debug("skipping live fetch", "venue", v.ID, "reason", locErr.Error())
		return nil, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	samples, err := a.provider.GetRangedForecast(fetchCtx, v.Coordinates, horizon)
	if err != nil {
		a.recordProviderFailure(v, err)
		return nil, false
	}

	if a.metrics != nil {
		a.metrics.RecordProviderCall(a.provider.ProviderName(), OutcomeSuccess)
	}
	return samples, true
}

func (a *Aggregator) recordProviderFailure(v venue.Venue, err error) {
	outcome := OutcomeNetwork
	if errors.IsProviderQuotaError(err) {
		outcome = OutcomeQuota
		// Quota exhaustion is operational, not a defect; keep the noise down.
		a.logger.Info("live provider quota exhausted, using simulation",
			"venue", v.ID, "provider", a.provider.ProviderName())
	} else {
		a.logger.Error("live provider fetch failed, using simulation",
			"venue", v.ID, "provider", a.provider.ProviderName(), "error", err)
	}
	if a.metrics != nil {
		a.metrics.RecordProviderCall(a.provider.ProviderName(), outcome)
	}
}

// fetchObservation attaches a current-conditions snapshot via the provider's
// point lookup. Failure here is non-fatal and only logged.
func (a *Aggregator) fetchObservation(ctx context.Context, v venue.Venue, now time.Time) *ForecastPoint {
	obsCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	sample, err := a.provider.GetPointForecast(obsCtx, v.Coordinates, now)
	if err != nil {
		a.logger.Debug("observation lookup failed", "venue", v.ID, "error", err)
		return nil
	}
	if sample == nil {
		return nil
	}

	point := a.livePoint(*sample, sample.Timestamp)
	return &point
}

// nearestSample finds the live sample closest to the step timestamp,
// accepting it only within the match window.
func nearestSample(samples []ForecastSample, ts time.Time) (ForecastSample, bool) {
	var best ForecastSample
	bestDiff := time.Duration(math.MaxInt64)
	for _, s := range samples {
		diff := s.Timestamp.Sub(ts)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = s
		}
	}
	if bestDiff > MatchWindow {
		return ForecastSample{}, false
	}
	return best, true
}

// livePoint maps a provider sample onto the timeline, filling defaults for
// instruments the provider did not report.
func (a *Aggregator) livePoint(s ForecastSample, ts time.Time) ForecastPoint {
	gust := orDefault(s.WindGustKts, s.WindSpeedKts*gustFactor)
	waterTemp := orDefault(s.WaterTempC, s.AirTempC-waterTempOffsetC)
	precip := orDefault(s.PrecipitationMMH, defaultPrecipMMH)

	waveHeight := orDefault(s.WaveHeightM, s.WindSpeedKts/10)
	confidence := orDefault(s.Confidence, defaultLiveConfidence)

	source := "live"
	if a.provider != nil {
		source = a.provider.ProviderName()
	}

	return ForecastPoint{
		Timestamp: ts,
		Wind: Wind{
			SpeedKts:     s.WindSpeedKts,
			DirectionDeg: wrap360(s.WindDirectionDeg),
			GustKts:      gust,
		},
		Waves: Waves{
			HeightM:      waveHeight,
			PeriodS:      orDefault(s.WavePeriodS, defaultWavePeriodS),
			DirectionDeg: wrap360(orDefault(s.WaveDirectionDeg, s.WindDirectionDeg)),
		},
		Current: Current{
			SpeedKts:     orDefault(s.CurrentSpeedKts, 0),
			DirectionDeg: wrap360(orDefault(s.CurrentDirectionDeg, 0)),
		},
		AirTempC:         s.AirTempC,
		WaterTempC:       waterTemp,
		VisibilityKm:     orDefault(s.VisibilityKm, 10),
		PressureHPa:      orDefault(s.PressureHPa, 1013),
		HumidityPct:      orDefault(s.HumidityPct, defaultHumidityPct),
		PrecipitationMMH: precip,
		CloudCoverPct:    orDefault(s.CloudCoverPct, defaultCloudCoverPct),
		Condition:        ConditionLabel(s.WindSpeedKts, precip),
		Confidence:       confidence,
		Source:           source,
	}
}

// simulatedPoint synthesizes a point from venue climatology. Confidence is
// the primary model reliability degraded linearly with forecast distance,
// capped at a 30% penalty, so it never increases along the timeline.
func (a *Aggregator) simulatedPoint(rng *rand.Rand, clim venue.Climatology, primary model.Descriptor, hoursFromNow int, ts time.Time) ForecastPoint {
	windSpeed := math.Max(0, clim.WindSpeedKts+spread(rng, clim.WindVariationKts))
	windDir := wrap360(clim.WindDirectionDeg + spread(rng, clim.DirectionVariationDeg))

	waveHeight := math.Max(0, windSpeed/10+spread(rng, 0.2))

	precip := defaultPrecipMMH
	if rng.Float64() < simulatedPrecipChance {
		precip = rng.Float64() * simulatedPrecipMaxMMH
	}

	airTemp := clim.AirTempC + spread(rng, 2)
	decay := math.Min(maxConfidenceDecay, float64(hoursFromNow)*confidenceDecayPerHour)

	return ForecastPoint{
		Timestamp: ts,
		Wind: Wind{
			SpeedKts:     windSpeed,
			DirectionDeg: windDir,
			GustKts:      windSpeed * gustFactor,
		},
		Waves: Waves{
			HeightM:      waveHeight,
			PeriodS:      4 + waveHeight*2,
			DirectionDeg: windDir,
		},
		Current: Current{
			SpeedKts:     windSpeed * windDriftFactor,
			DirectionDeg: windDir,
		},
		AirTempC:         airTemp,
		WaterTempC:       airTemp - waterTempOffsetC,
		VisibilityKm:     clim.VisibilityKm,
		PressureHPa:      clim.PressureHPa + spread(rng, 5),
		HumidityPct:      clampPct(defaultHumidityPct + spread(rng, 15)),
		PrecipitationMMH: precip,
		CloudCoverPct:    clampPct(defaultCloudCoverPct + spread(rng, 30)),
		Condition:        ConditionLabel(windSpeed, precip),
		Confidence:       primary.Reliability * (1 - decay),
		Source:           primary.Name,
	}
}

func primaryModel(models []model.Descriptor) model.Descriptor {
	if len(models) == 0 {
		return model.Descriptor{Name: "climatology", Reliability: 0.75}
	}
	return models[0]
}

func attribution(models []model.Descriptor, primary model.Descriptor) SourceAttribution {
	attr := SourceAttribution{
		Primary:            primary.Name,
		PrimaryReliability: primary.Reliability,
	}
	for _, m := range models[min(1, len(models)):] {
		attr.Secondary = append(attr.Secondary, m.Name)
	}
	return attr
}

// spread returns a uniform value in [-bound, bound]
func spread(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

func wrap360(deg float64) float64 {
	wrapped := math.Mod(deg, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func orDefault(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
