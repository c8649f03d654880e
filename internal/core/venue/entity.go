// Package venue holds the sailing-venue domain model. Venues are owned by an
// external registry; this core only reads them.
package venue

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Coordinates is the canonical position representation used everywhere inside
// the engine. External payloads are normalized into it on ingestion and may
// arrive in either of two shapes:
//
//   - a GeoJSON-ordered array: [longitude, latitude]
//   - an object with keys "lat" or "latitude", and "lng", "lon", "long" or
//     "longitude"
//
// The two shapes are mutually exclusive at the JSON level, so there is no
// ambiguity about which one wins.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type coordinateObject struct {
	Lat       *float64 `json:"lat"`
	Latitude  *float64 `json:"latitude"`
	Lng       *float64 `json:"lng"`
	Lon       *float64 `json:"lon"`
	Long      *float64 `json:"long"`
	Longitude *float64 `json:"longitude"`
}

// UnmarshalJSON accepts both supported coordinate shapes
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("parse coordinate array: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("coordinate array must have exactly 2 elements, got %d", len(pair))
		}
		c.Longitude = pair[0]
		c.Latitude = pair[1]
		return nil
	}

	var obj coordinateObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("parse coordinate object: %w", err)
	}

	lat := firstSet(obj.Lat, obj.Latitude)
	lng := firstSet(obj.Lng, obj.Lon, obj.Long, obj.Longitude)
	if lat == nil || lng == nil {
		return fmt.Errorf("coordinate object must contain a latitude and a longitude key")
	}

	c.Latitude = *lat
	c.Longitude = *lng
	return nil
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Valid reports whether the coordinates can be used for a live lookup
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	if math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Climatology is the venue's typical-conditions baseline, used only to seed
// simulated forecast points when the live provider is unavailable.
type Climatology struct {
	WindSpeedKts     float64 `json:"wind_speed_kts"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	// WindVariationKts bounds the random spread applied around the baseline
	WindVariationKts      float64 `json:"wind_variation_kts"`
	DirectionVariationDeg float64 `json:"direction_variation_deg"`
	AirTempC              float64 `json:"air_temp_c"`
	VisibilityKm          float64 `json:"visibility_km"`
	PressureHPa           float64 `json:"pressure_hpa"`
}

const (
	defaultWindVariationKts      = 4
	defaultDirectionVariationDeg = 30
	defaultVisibilityKm          = 10
	defaultPressureHPa           = 1013
)

// Normalized returns the climatology with zero-valued bounds replaced by
// sensible defaults so a sparse venue record still yields plausible synthesis.
func (c Climatology) Normalized() Climatology {
	out := c
	if out.WindVariationKts <= 0 {
		out.WindVariationKts = defaultWindVariationKts
	}
	if out.DirectionVariationDeg <= 0 {
		out.DirectionVariationDeg = defaultDirectionVariationDeg
	}
	if out.VisibilityKm <= 0 {
		out.VisibilityKm = defaultVisibilityKm
	}
	if out.PressureHPa <= 0 {
		out.PressureHPa = defaultPressureHPa
	}
	return out
}

// Venue represents a sailing venue supplied by the external venue registry
type Venue struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Region      string      `json:"region"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
	Climatology Climatology `json:"climatology"`
}

// IsValid validates the fields the aggregation engine depends on
func (v *Venue) IsValid() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("venue id cannot be empty")
	}
	if strings.TrimSpace(v.Region) == "" {
		return fmt.Errorf("venue region cannot be empty")
	}
	return nil
}
