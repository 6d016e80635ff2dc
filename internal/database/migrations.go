package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicatePricingRecords removes duplicate (card_id, source) rows
// before the unique constraint is added. Runs BEFORE AutoMigrate to prevent
// constraint violations on databases written by older builds.
func cleanupDuplicatePricingRecords(db *gorm.DB) error {
	if !db.Migrator().HasTable("pricing_records") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM pricing_records
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM pricing_records
			GROUP BY card_id, source
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate pricing_records entries", result.RowsAffected)
	}

	return nil
}

// RunMigrations runs custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateGradingStatus(db); err != nil {
		return err
	}
	if err := migrateQuantityDefaults(db); err != nil {
		return err
	}
	return nil
}

// migrateGradingStatus normalizes legacy grading status spellings
// ("PSA 10", "psa10", "raw") to the canonical enum values. Safe to run
// repeatedly.
func migrateGradingStatus(db *gorm.DB) error {
	if !db.Migrator().HasColumn("portfolio_entries", "grading_status") {
		return nil
	}

	result := db.Exec(`
		UPDATE portfolio_entries
		SET grading_status = CASE
			WHEN LOWER(REPLACE(grading_status, ' ', '')) IN ('psa7', 'psa-7') THEN 'psa-7'
			WHEN LOWER(REPLACE(grading_status, ' ', '')) IN ('psa8', 'psa-8') THEN 'psa-8'
			WHEN LOWER(REPLACE(grading_status, ' ', '')) IN ('psa9', 'psa-9') THEN 'psa-9'
			WHEN LOWER(REPLACE(grading_status, ' ', '')) IN ('psa10', 'psa-10') THEN 'psa-10'
			ELSE 'ungraded'
		END
		WHERE grading_status IS NULL
		   OR grading_status NOT IN ('ungraded', 'psa-7', 'psa-8', 'psa-9', 'psa-10')
	`)
	if result.Error != nil {
		log.Printf("Warning: failed to normalize grading status values: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Normalized %d portfolio grading status values", result.RowsAffected)
	}

	return nil
}

// migrateQuantityDefaults backfills zero or NULL quantities to 1 so the
// quantity >= 1 invariant holds on old rows
func migrateQuantityDefaults(db *gorm.DB) error {
	if !db.Migrator().HasTable("portfolio_entries") {
		return nil
	}

	result := db.Exec(`UPDATE portfolio_entries SET quantity = 1 WHERE quantity IS NULL OR quantity < 1`)
	if result.Error != nil {
		log.Printf("Warning: failed to backfill portfolio quantities: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Backfilled %d portfolio quantities", result.RowsAffected)
	}

	return nil
}
