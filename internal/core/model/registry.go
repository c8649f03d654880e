// Package model holds the static catalogue of regional weather models and the
// selection logic that ranks them for a venue.
package model

import (
	"sort"

	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

// CoverageWildcard marks a descriptor that covers every country in its region
const CoverageWildcard = "*"

// reliabilityTieband is the reliability delta under which two models are
// considered equivalent and the finer grid wins.
const reliabilityTieband = 0.05

// maxSelectedModels caps how many descriptors a selection returns
const maxSelectedModels = 3

// Descriptor describes one regional weather model. Descriptors are immutable;
// the registry is built once at startup and never mutated.
type Descriptor struct {
	Name                 string
	Region               string
	Coverage             []string
	ResolutionKm         float64
	UpdateFrequencyHours int
	ForecastHorizonHours int
	Reliability          float64
}

// Covers reports whether the descriptor covers the given country
func (d Descriptor) Covers(country string) bool {
	for _, c := range d.Coverage {
		if c == CoverageWildcard || c == country {
			return true
		}
	}
	return false
}

// IsGlobal reports whether the descriptor is a worldwide fallback entry
func (d Descriptor) IsGlobal() bool {
	return d.Region == "global" && d.Covers(CoverageWildcard)
}

// Registry is the immutable model catalogue. Construct it once in the
// composition root and inject it where needed.
type Registry struct {
	entries []Descriptor
	global  Descriptor
}

// NewRegistry builds a registry from the given descriptors. At least one
// global-coverage entry is required so selection can always fall back.
func NewRegistry(entries []Descriptor) (*Registry, error) {
	var global *Descriptor
	for i := range entries {
		if entries[i].IsGlobal() {
			if global == nil || entries[i].Reliability > global.Reliability {
				global = &entries[i]
			}
		}
	}
	if global == nil {
		return nil, errors.NewConfigurationError("model registry requires a global-coverage entry", nil)
	}

	copied := make([]Descriptor, len(entries))
	copy(copied, entries)

	return &Registry{
		entries: copied,
		global:  *global,
	}, nil
}

// Entries returns a copy of the catalogue
func (r *Registry) Entries() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// GlobalFallback returns the highest-reliability global entry
func (r *Registry) GlobalFallback() Descriptor {
	return r.global
}

// SelectModels filters and ranks the catalogue for a venue. The result is
// never empty: when no regional model covers the venue the global fallback is
// returned alone. At most three descriptors are returned, ordered by
// reliability descending with near-ties broken by resolution ascending.
func (r *Registry) SelectModels(v venue.Venue) []Descriptor {
	candidates := make([]Descriptor, 0, len(r.entries))
	for _, d := range r.entries {
		if d.Region == v.Region && d.Covers(v.Country) {
			candidates = append(candidates, d)
		}
	}

	if len(candidates) == 0 {
		return []Descriptor{r.global}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i], candidates[j]
		diff := di.Reliability - dj.Reliability
		if diff < 0 {
			diff = -diff
		}
		if diff <= reliabilityTieband {
			return di.ResolutionKm < dj.ResolutionKm
		}
		return di.Reliability > dj.Reliability
	})

	if len(candidates) > maxSelectedModels {
		candidates = candidates[:maxSelectedModels]
	}
	return candidates
}

// DefaultRegistry returns the production model catalogue
func DefaultRegistry() *Registry {
	registry, err := NewRegistry([]Descriptor{
		{
			Name:                 "ECMWF-IFS",
			Region:               "global",
			Coverage:             []string{CoverageWildcard},
			ResolutionKm:         9,
			UpdateFrequencyHours: 6,
			ForecastHorizonHours: 240,
			Reliability:          0.92,
		},
		{
			Name:                 "NOAA-GFS",
			Region:               "global",
			Coverage:             []string{CoverageWildcard},
			ResolutionKm:         13,
			UpdateFrequencyHours: 6,
			ForecastHorizonHours: 240,
			Reliability:          0.88,
		},
		{
			Name:                 "UKMO-UKV",
			Region:               "europe",
			Coverage:             []string{"United Kingdom", "Ireland"},
			ResolutionKm:         2,
			UpdateFrequencyHours: 3,
			ForecastHorizonHours: 54,
			Reliability:          0.91,
		},
		{
			Name:                 "Meteo-France-AROME",
			Region:               "europe",
			Coverage:             []string{"France", "Spain", "Italy", "Monaco"},
			ResolutionKm:         1.3,
			UpdateFrequencyHours: 3,
			ForecastHorizonHours: 48,
			Reliability:          0.93,
		},
		{
			Name:                 "DWD-ICON-EU",
			Region:               "europe",
			Coverage:             []string{CoverageWildcard},
			ResolutionKm:         6.5,
			UpdateFrequencyHours: 3,
			ForecastHorizonHours: 120,
			Reliability:          0.9,
		},
		{
			Name:                 "NOAA-HRRR",
			Region:               "north-america",
			Coverage:             []string{"United States"},
			ResolutionKm:         3,
			UpdateFrequencyHours: 1,
			ForecastHorizonHours: 48,
			Reliability:          0.9,
		},
		{
			Name:                 "NOAA-NAM",
			Region:               "north-america",
			Coverage:             []string{"United States", "Canada", "Mexico"},
			ResolutionKm:         12,
			UpdateFrequencyHours: 6,
			ForecastHorizonHours: 84,
			Reliability:          0.86,
		},
		{
			Name:                 "JMA-MSM",
			Region:               "asia-pacific",
			Coverage:             []string{"Japan"},
			ResolutionKm:         5,
			UpdateFrequencyHours: 3,
			ForecastHorizonHours: 78,
			Reliability:          0.89,
		},
		{
			Name:                 "HKO-AIRS",
			Region:               "asia-pacific",
			Coverage:             []string{"Hong Kong", "China"},
			ResolutionKm:         2,
			UpdateFrequencyHours: 1,
			ForecastHorizonHours: 72,
			Reliability:          0.87,
		},
		{
			Name:                 "BOM-ACCESS-G",
			Region:               "oceania",
			Coverage:             []string{CoverageWildcard},
			ResolutionKm:         12,
			UpdateFrequencyHours: 6,
			ForecastHorizonHours: 240,
			Reliability:          0.87,
		},
		{
			Name:                 "BOM-ACCESS-C",
			Region:               "oceania",
			Coverage:             []string{"Australia"},
			ResolutionKm:         1.5,
			UpdateFrequencyHours: 6,
			ForecastHorizonHours: 42,
			Reliability:          0.89,
		},
	})
	if err != nil {
		// The catalogue above always contains a global entry
		panic(err)
	}
	return registry
}
