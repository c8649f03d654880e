// Package database provides the venue registry store. The registry is an
// external collaborator to the aggregation core: the core only ever reads
// venues supplied per request.
package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kevindenney/regattaflow-weather/internal/config"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

// NewConnection opens the configured database and migrates the venue schema
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	default:
		return nil, errors.NewConfigurationError("unsupported database driver: "+cfg.Driver, nil)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.NewDatabaseError("failed to connect to database", err)
	}

	if err := db.AutoMigrate(&VenueRecord{}); err != nil {
		return nil, errors.NewDatabaseError("failed to migrate venue schema", err)
	}

	return db, nil
}
