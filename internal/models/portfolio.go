package models

import (
	"time"
)

// PortfolioEntry is a purchase lot owned by a user. The schema is
// multi-entry: a user may hold several lots of the same card bought at
// different prices or grades, each with its own quantity.
type PortfolioEntry struct {
	ID            uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        string        `json:"user_id" gorm:"not null;index"`
	CardID        string        `json:"card_id" gorm:"not null;index"`
	Card          Card          `json:"card" gorm:"foreignKey:CardID"`
	PurchasePrice float64       `json:"purchase_price" gorm:"not null"`
	PurchaseDate  time.Time     `json:"purchase_date"`
	Quantity      int           `json:"quantity" gorm:"default:1"`
	GradingStatus GradingStatus `json:"grading_status" gorm:"default:'ungraded'"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PortfolioItem is an entry joined with its live valuation. ROI is always
// derived from the price inputs, never stored.
type PortfolioItem struct {
	PortfolioEntry
	CurrentPrice        float64 `json:"current_price"`
	Profit              float64 `json:"profit"`
	ROIPercent          float64 `json:"roi_percent"`
	GradingCostEstimate float64 `json:"grading_cost_estimate"`
}

type PortfolioStats struct {
	TotalEntries  int     `json:"total_entries"`
	TotalCards    int     `json:"total_cards"`
	UniqueCards   int     `json:"unique_cards"`
	TotalCost     float64 `json:"total_cost"`
	TotalValue    float64 `json:"total_value"`
	TotalProfit   float64 `json:"total_profit"`
	ROIPercent    float64 `json:"roi_percent"`
	GradedCards   int     `json:"graded_cards"`
	UngradedCards int     `json:"ungraded_cards"`
}

type AddPortfolioRequest struct {
	CardID        string  `json:"card_id" binding:"required"`
	PurchasePrice float64 `json:"purchase_price" binding:"required"`
	PurchaseDate  string  `json:"purchase_date"`
	Quantity      int     `json:"quantity"`
	GradingStatus string  `json:"grading_status"`
	Notes         string  `json:"notes"`
}

type UpdatePortfolioRequest struct {
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date"`
	Quantity      *int     `json:"quantity"`
	GradingStatus *string  `json:"grading_status"`
	Notes         *string  `json:"notes"`
}

// PortfolioValueSnapshot stores daily portfolio value per user for
// historical tracking
type PortfolioValueSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_snapshot_date"`
	SnapshotDate time.Time `json:"snapshot_date" gorm:"not null;uniqueIndex:idx_user_snapshot_date"`
	TotalCards   int       `json:"total_cards"`
	UniqueCards  int       `json:"unique_cards"`
	TotalCost    float64   `json:"total_cost"`
	TotalValue   float64   `json:"total_value"`
	CreatedAt    time.Time `json:"created_at"`
}
