package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kevindenney/regattaflow-weather/internal/core/venue"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

// VenueRecord is the persistence shape of a sailing venue
type VenueRecord struct {
	ID                    string `gorm:"primaryKey"`
	Name                  string `gorm:"not null"`
	Region                string `gorm:"index;not null"`
	Country               string `gorm:"not null"`
	Latitude              float64
	Longitude             float64
	WindSpeedKts          float64
	WindDirectionDeg      float64
	WindVariationKts      float64
	DirectionVariationDeg float64
	AirTempC              float64
	VisibilityKm          float64
	PressureHPa           float64
}

func (VenueRecord) TableName() string {
	return "venues"
}

func (r VenueRecord) toDomain() venue.Venue {
	return venue.Venue{
		ID:      r.ID,
		Name:    r.Name,
		Region:  r.Region,
		Country: r.Country,
		Coordinates: venue.Coordinates{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		},
		Climatology: venue.Climatology{
			WindSpeedKts:          r.WindSpeedKts,
			WindDirectionDeg:      r.WindDirectionDeg,
			WindVariationKts:      r.WindVariationKts,
			DirectionVariationDeg: r.DirectionVariationDeg,
			AirTempC:              r.AirTempC,
			VisibilityKm:          r.VisibilityKm,
			PressureHPa:           r.PressureHPa,
		},
	}
}

func fromDomain(v venue.Venue) VenueRecord {
	return VenueRecord{
		ID:                    v.ID,
		Name:                  v.Name,
		Region:                v.Region,
		Country:               v.Country,
		Latitude:              v.Coordinates.Latitude,
		Longitude:             v.Coordinates.Longitude,
		WindSpeedKts:          v.Climatology.WindSpeedKts,
		WindDirectionDeg:      v.Climatology.WindDirectionDeg,
		WindVariationKts:      v.Climatology.WindVariationKts,
		DirectionVariationDeg: v.Climatology.DirectionVariationDeg,
		AirTempC:              v.Climatology.AirTempC,
		VisibilityKm:          v.Climatology.VisibilityKm,
		PressureHPa:           v.Climatology.PressureHPa,
	}
}

// VenueRepository reads venues for the HTTP adapter and seeds the catalogue
type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// GetByID fetches a single venue
func (r *VenueRepository) GetByID(ctx context.Context, id string) (venue.Venue, error) {
	var record VenueRecord
	result := r.db.WithContext(ctx).First(&record, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return venue.Venue{}, errors.NewNotFoundError("venue not found: " + id)
		}
		return venue.Venue{}, errors.NewDatabaseError("failed to load venue", result.Error)
	}
	return record.toDomain(), nil
}

// List returns the full venue catalogue ordered by name
func (r *VenueRepository) List(ctx context.Context) ([]venue.Venue, error) {
	var records []VenueRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, errors.NewDatabaseError("failed to list venues", err)
	}

	venues := make([]venue.Venue, 0, len(records))
	for _, record := range records {
		venues = append(venues, record.toDomain())
	}
	return venues, nil
}

// Seed upserts the given venues, used at startup to load the catalogue
func (r *VenueRepository) Seed(ctx context.Context, venues []venue.Venue) error {
	for _, v := range venues {
		record := fromDomain(v)
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&record)
		if result.Error != nil {
			return errors.NewDatabaseError("failed to seed venue "+v.ID, result.Error)
		}
	}
	return nil
}

// DefaultVenues is the built-in sailing venue catalogue
func DefaultVenues() []venue.Venue {
	return []venue.Venue{
		{
			ID:      "hong-kong-victoria-harbour",
			Name:    "Victoria Harbour",
			Region:  "asia-pacific",
			Country: "Hong Kong",
			Coordinates: venue.Coordinates{Latitude: 22.2855, Longitude: 114.1577},
			Climatology: venue.Climatology{
				WindSpeedKts: 12, WindDirectionDeg: 70, WindVariationKts: 5,
				DirectionVariationDeg: 35, AirTempC: 24, VisibilityKm: 8, PressureHPa: 1012,
			},
		},
		{
			ID:      "cowes-solent",
			Name:    "Cowes, The Solent",
			Region:  "europe",
			Country: "United Kingdom",
			Coordinates: venue.Coordinates{Latitude: 50.7631, Longitude: -1.2973},
			Climatology: venue.Climatology{
				WindSpeedKts: 14, WindDirectionDeg: 225, WindVariationKts: 6,
				DirectionVariationDeg: 40, AirTempC: 14, VisibilityKm: 12, PressureHPa: 1014,
			},
		},
		{
			ID:      "san-francisco-bay",
			Name:    "San Francisco Bay",
			Region:  "north-america",
			Country: "United States",
			Coordinates: venue.Coordinates{Latitude: 37.8199, Longitude: -122.4783},
			Climatology: venue.Climatology{
				WindSpeedKts: 18, WindDirectionDeg: 270, WindVariationKts: 6,
				DirectionVariationDeg: 25, AirTempC: 16, VisibilityKm: 10, PressureHPa: 1016,
			},
		},
		{
			ID:      "auckland-hauraki-gulf",
			Name:    "Hauraki Gulf",
			Region:  "oceania",
			Country: "New Zealand",
			Coordinates: venue.Coordinates{Latitude: -36.7509, Longitude: 174.8934},
			Climatology: venue.Climatology{
				WindSpeedKts: 15, WindDirectionDeg: 210, WindVariationKts: 5,
				DirectionVariationDeg: 35, AirTempC: 17, VisibilityKm: 15, PressureHPa: 1015,
			},
		},
		{
			ID:      "sydney-harbour",
			Name:    "Sydney Harbour",
			Region:  "oceania",
			Country: "Australia",
			Coordinates: venue.Coordinates{Latitude: -33.8523, Longitude: 151.2108},
			Climatology: venue.Climatology{
				WindSpeedKts: 13, WindDirectionDeg: 135, WindVariationKts: 5,
				DirectionVariationDeg: 45, AirTempC: 20, VisibilityKm: 14, PressureHPa: 1013,
			},
		},
		{
			ID:      "marseille-rade-sud",
			Name:    "Rade Sud de Marseille",
			Region:  "europe",
			Country: "France",
			Coordinates: venue.Coordinates{Latitude: 43.2631, Longitude: 5.3348},
			Climatology: venue.Climatology{
				WindSpeedKts: 16, WindDirectionDeg: 315, WindVariationKts: 8,
				DirectionVariationDeg: 30, AirTempC: 19, VisibilityKm: 18, PressureHPa: 1015,
			},
		},
	}
}
