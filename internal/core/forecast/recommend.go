package forecast

// Recommendation classifies current conditions for sailing
type Recommendation struct {
	Recommended bool     `json:"recommended"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
	BoatClasses []string `json:"boat_classes"`
}

// Wind brackets in knots for the recommendation rules
const (
	minSailableWindKts = 3
	idealWindMaxKts    = 12
	goodWindMaxKts     = 20
	strongWindMaxKts   = 30
	largeWaveHeightM   = 2
	poorVisibilityKm   = 2
	baseRecConfidence  = 0.8
)

// Recommend evaluates the first forecast point (current conditions) plus the
// alert list. Penalty multipliers compound; recommended flips to false and
// stays false once any flip rule fires.
func Recommend(weather *WeatherData) Recommendation {
	rec := Recommendation{
		Recommended: true,
		Confidence:  baseRecConfidence,
		Reasons:     []string{},
		BoatClasses: []string{},
	}
	if weather == nil || len(weather.Forecast) == 0 {
		rec.Recommended = false
		rec.Confidence = 0
		rec.Reasons = append(rec.Reasons, "no forecast data available")
		return rec
	}

	current := weather.Forecast[0]
	wind := current.Wind.SpeedKts

	switch {
	case wind < minSailableWindKts:
		rec.Recommended = false
		rec.Confidence *= 0.3
		rec.Reasons = append(rec.Reasons, "insufficient wind")
	case wind > strongWindMaxKts:
		rec.Recommended = false
		rec.Confidence *= 0.2
		rec.Reasons = append(rec.Reasons, "dangerous wind conditions")
	case wind > goodWindMaxKts:
		rec.Confidence *= 0.7
		rec.Reasons = append(rec.Reasons, "strong conditions - experienced sailors only")
		rec.BoatClasses = append(rec.BoatClasses, "Keelboat", "Heavy Dinghy")
	case wind > idealWindMaxKts:
		rec.Reasons = append(rec.Reasons, "good sailing conditions")
		rec.BoatClasses = append(rec.BoatClasses, "Keelboat", "Dinghy", "Catamaran")
	default:
		rec.Reasons = append(rec.Reasons, "light-to-moderate, ideal for learning")
		rec.BoatClasses = append(rec.BoatClasses, "All Classes")
	}

	if current.Waves.HeightM > largeWaveHeightM {
		rec.Confidence *= 0.8
		rec.Reasons = append(rec.Reasons, "large waves may be challenging")
	}

	if current.VisibilityKm < poorVisibilityKm {
		rec.Recommended = false
		rec.Confidence *= 0.1
		rec.Reasons = append(rec.Reasons, "poor visibility")
	}

	for _, alert := range weather.Alerts {
		if alert.Severity == SeverityWarning || alert.Severity == SeverityEmergency {
			rec.Recommended = false
			rec.Confidence *= 0.1
			rec.Reasons = append(rec.Reasons, "active weather warnings")
			break
		}
	}

	return rec
}
