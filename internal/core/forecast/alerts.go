package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
)

// Alert thresholds in knots / kilometres
const (
	smallCraftGustKts = 25
	galeGustKts       = 35
	denseFogKm        = 2

	windAlertWindow       = 24 * time.Hour
	visibilityAlertWindow = 12 * time.Hour

	alertSource = "regattaflow-aggregation"
)

// DeriveAlerts scans a forecast timeline for threshold breaches. The wind and
// visibility rules are independent; a timeline can trigger zero, one or both.
func DeriveAlerts(v venue.Venue, points []ForecastPoint) []Alert {
	alerts := []Alert{}
	if len(points) == 0 {
		return alerts
	}

	start := points[0].Timestamp

	maxGust := 0.0
	minVisibility := points[0].VisibilityKm
	for _, p := range points {
		gust := p.Wind.GustKts
		if gust == 0 {
			gust = p.Wind.SpeedKts
		}
		if gust > maxGust {
			maxGust = gust
		}
		if p.VisibilityKm < minVisibility {
			minVisibility = p.VisibilityKm
		}
	}

	if maxGust > smallCraftGustKts {
		alert := Alert{
			ID:     uuid.NewString(),
			Type:   AlertTypeSmallCraft,
			Start:  start,
			End:    start.Add(windAlertWindow),
			Areas:  []string{v.Name},
			Source: alertSource,
		}
		if maxGust > galeGustKts {
			alert.Type = AlertTypeGale
			alert.Severity = SeverityWarning
			alert.Title = "Gale Warning"
			alert.Description = fmt.Sprintf("Gusts up to %.0f knots expected. Sailing not advised for most classes.", maxGust)
		} else {
			alert.Severity = SeverityAdvisory
			alert.Title = "Small Craft Advisory"
			alert.Description = fmt.Sprintf("Gusts up to %.0f knots expected. Small craft should exercise caution.", maxGust)
		}
		alerts = append(alerts, alert)
	}

	if minVisibility < denseFogKm {
		alerts = append(alerts, Alert{
			ID:          uuid.NewString(),
			Type:        AlertTypeVisibility,
			Severity:    SeverityAdvisory,
			Title:       "Dense Fog Advisory",
			Description: fmt.Sprintf("Visibility down to %.1f km expected. Navigation hazard for racing.", minVisibility),
			Start:       start,
			End:         start.Add(visibilityAlertWindow),
			Areas:       []string{v.Name},
			Source:      alertSource,
		})
	}

	return alerts
}
