// Package forecast implements the marine-weather aggregation engine: timeline
// construction, live/simulated blending, alert derivation and sailing
// recommendations.
package forecast

import (
	"math"
	"time"

	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
)

// Wind holds true wind speed/direction plus gusts, all normalized
type Wind struct {
	SpeedKts     float64 `json:"speed_kts"`
	DirectionDeg float64 `json:"direction_deg"`
	GustKts      float64 `json:"gust_kts"`
}

type Waves struct {
	HeightM      float64 `json:"height_m"`
	PeriodS      float64 `json:"period_s"`
	DirectionDeg float64 `json:"direction_deg"`
}

type Current struct {
	SpeedKts     float64 `json:"speed_kts"`
	DirectionDeg float64 `json:"direction_deg"`
}

// ForecastPoint is one fully-populated timeline entry. Confidence is in [0,1]
// and never increases with distance into the future within a single
// aggregation, except where a live sample carries provider-reported confidence.
type ForecastPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	Wind             Wind      `json:"wind"`
	Waves            Waves     `json:"waves"`
	Current          Current   `json:"current"`
	AirTempC         float64   `json:"air_temp_c"`
	WaterTempC       float64   `json:"water_temp_c"`
	VisibilityKm     float64   `json:"visibility_km"`
	PressureHPa      float64   `json:"pressure_hpa"`
	HumidityPct      float64   `json:"humidity_pct"`
	PrecipitationMMH float64   `json:"precipitation_mmh"`
	CloudCoverPct    float64   `json:"cloud_cover_pct"`
	Condition        string    `json:"condition"`
	Confidence       float64   `json:"confidence"`
	Source           string    `json:"source"`
}

// ForecastSample is a raw live-provider observation. Optional instruments are
// pointer-typed; the aggregator fills defaults when they are absent.
type ForecastSample struct {
	Timestamp           time.Time
	WindSpeedKts        float64
	WindDirectionDeg    float64
	WindGustKts         *float64
	WaveHeightM         *float64
	WavePeriodS         *float64
	WaveDirectionDeg    *float64
	CurrentSpeedKts     *float64
	CurrentDirectionDeg *float64
	AirTempC            float64
	WaterTempC          *float64
	VisibilityKm        *float64
	PressureHPa         *float64
	HumidityPct         *float64
	PrecipitationMMH    *float64
	CloudCoverPct       *float64
	Confidence          *float64
}

// Condition label thresholds (wind speed in knots)
const (
	calmMaxKts     = 3
	lightMaxKts    = 8
	moderateMaxKts = 15
	windyMaxKts    = 25

	rainyPrecipMMH  = 1
	stormyPrecipMMH = 5
)

// ConditionLabel derives the textual condition from wind and precipitation
func ConditionLabel(windSpeedKts, precipitationMMH float64) string {
	if precipitationMMH > stormyPrecipMMH {
		return "Stormy"
	}
	if precipitationMMH > rainyPrecipMMH {
		return "Rainy"
	}

	switch {
	case windSpeedKts <= calmMaxKts:
		return "Calm"
	case windSpeedKts <= lightMaxKts:
		return "Light Breeze"
	case windSpeedKts <= moderateMaxKts:
		return "Moderate Breeze"
	case windSpeedKts <= windyMaxKts:
		return "Windy"
	default:
		return "Very Windy"
	}
}

// MarineConditions is a derived snapshot of the sea state at the first
// forecast point. It is computed per aggregation and never persisted alone.
type MarineConditions struct {
	SeaState          int     `json:"sea_state"`
	SwellHeightM      float64 `json:"swell_height_m"`
	SwellPeriodS      float64 `json:"swell_period_s"`
	SwellDirectionDeg float64 `json:"swell_direction_deg"`
	TidalState        string  `json:"tidal_state"`
	SurfaceCurrentKts float64 `json:"surface_current_kts"`
}

const (
	maxSeaState = 9
	// fraction of wind speed used to estimate surface drift when the
	// provider reports no current
	windDriftFactor = 0.03
	// principal lunar semidiurnal (M2) period
	tidalCycle = time.Duration(12.42 * float64(time.Hour))
)

// TidalStateAt estimates the tidal phase from the M2 cycle. It is a coarse
// climatological estimate, not a harmonic prediction.
func TidalStateAt(t time.Time) string {
	phase := float64(t.Unix()%int64(tidalCycle.Seconds())) / tidalCycle.Seconds()
	switch {
	case phase < 0.4:
		return "flood"
	case phase < 0.5:
		return "slack"
	case phase < 0.9:
		return "ebb"
	default:
		return "slack"
	}
}

// DeriveMarineConditions computes the snapshot from the given forecast point
func DeriveMarineConditions(p ForecastPoint) MarineConditions {
	seaState := int(math.Floor(p.Waves.HeightM * 2))
	if seaState < 0 {
		seaState = 0
	}
	if seaState > maxSeaState {
		seaState = maxSeaState
	}

	surfaceCurrent := p.Current.SpeedKts
	if surfaceCurrent <= 0 {
		surfaceCurrent = p.Wind.SpeedKts * windDriftFactor
	}

	return MarineConditions{
		SeaState:          seaState,
		SwellHeightM:      p.Waves.HeightM,
		SwellPeriodS:      p.Waves.PeriodS,
		SwellDirectionDeg: p.Waves.DirectionDeg,
		TidalState:        TidalStateAt(p.Timestamp),
		SurfaceCurrentKts: surfaceCurrent,
	}
}

type AlertType string

const (
	AlertTypeGale       AlertType = "gale"
	AlertTypeStorm      AlertType = "storm"
	AlertTypeSmallCraft AlertType = "small-craft"
	AlertTypeVisibility AlertType = "visibility"
	AlertTypeMarine     AlertType = "marine"
	AlertTypeIce        AlertType = "ice"
)

type AlertSeverity string

const (
	SeverityAdvisory  AlertSeverity = "advisory"
	SeverityWatch     AlertSeverity = "watch"
	SeverityWarning   AlertSeverity = "warning"
	SeverityEmergency AlertSeverity = "emergency"
)

// Alert is an advisory derived from a forecast timeline
type Alert struct {
	ID          string        `json:"id"`
	Type        AlertType     `json:"type"`
	Severity    AlertSeverity `json:"severity"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Areas       []string      `json:"areas"`
	Source      string        `json:"source"`
}

// SourceAttribution names the models backing a forecast
type SourceAttribution struct {
	Primary            string   `json:"primary"`
	PrimaryReliability float64  `json:"primary_reliability"`
	Secondary          []string `json:"secondary,omitempty"`
}

// WeatherData is the aggregate returned to callers: a complete, ordered
// timeline plus everything derived from it.
type WeatherData struct {
	VenueID     string            `json:"venue_id"`
	VenueName   string            `json:"venue_name"`
	Coordinates venue.Coordinates `json:"coordinates"`
	Forecast    []ForecastPoint   `json:"forecast"`
	Alerts      []Alert           `json:"alerts"`
	Marine      MarineConditions  `json:"marine"`
	Source      SourceAttribution `json:"source"`
	LastUpdated time.Time         `json:"last_updated"`
	Observation *ForecastPoint    `json:"observation,omitempty"`
}
