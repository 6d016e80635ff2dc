package database

import (
	"log"

	"github.com/cardfolio/cardfolio/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Println("Database connected successfully")

	// Data cleanup has to happen before the unique indexes exist
	if err := cleanupDuplicatePricingRecords(DB); err != nil {
		return err
	}

	err = DB.AutoMigrate(
		&models.Set{},
		&models.Card{},
		&models.PortfolioEntry{},
		&models.WatchlistEntry{},
		&models.PricingRecord{},
		&models.PriceHistory{},
		&models.PortfolioValueSnapshot{},
		&models.UserPreference{},
		&models.UserAPIKey{},
	)
	if err != nil {
		return err
	}

	if err := RunMigrations(DB); err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
