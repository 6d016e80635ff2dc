package models

import (
	"time"
)

// Price source identifiers. One PricingRecord exists per (card, source);
// the latest sync overwrites via upsert.
const (
	SourceCatalog      = "catalog"
	SourcePriceTracker = "pricetracker"
	SourceJustTCG      = "justtcg"
	SourceMerged       = "merged"
)

// PricingRecord holds per-grade prices for a card from one source.
// ROIPercentage is computed server-side at sync time once both an ungraded
// and a graded price are resolved; it is the grading upside, not a stored
// portfolio ROI.
type PricingRecord struct {
	ID            uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID        string `json:"card_id" gorm:"not null;uniqueIndex:idx_card_source"`
	Source        string `json:"source" gorm:"not null;uniqueIndex:idx_card_source"`
	PricePoints   `gorm:"embedded"`
	ROIPercentage float64    `json:"roi_percentage" gorm:"column:roi_percentage"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PriceHistory is the daily time series, one row per (card, source, date)
type PriceHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID      string    `json:"card_id" gorm:"not null;uniqueIndex:idx_card_source_date"`
	Source      string    `json:"source" gorm:"not null;uniqueIndex:idx_card_source_date"`
	Date        time.Time `json:"date" gorm:"not null;uniqueIndex:idx_card_source_date"`
	PricePoints `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
}

// PriceHistoryResponse is the API response for a card's price history
type PriceHistoryResponse struct {
	CardID  string         `json:"card_id"`
	Period  string         `json:"period"` // "week", "month", "year", "all"
	History []PriceHistory `json:"history"`
}
