package models

import (
	"time"
)

// Set is a Pokemon card set (expansion). Reference data synced from the
// catalog API, immutable apart from periodic refresh.
type Set struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	Series       string    `json:"series"`
	PrintedTotal int       `json:"printed_total"`
	Total        int       `json:"total"`
	ReleaseDate  string    `json:"release_date"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Card is reference data plus denormalized current price points. Prices are
// refreshed by the sync adapters; everything else only changes on catalog
// resync.
type Card struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;index"`
	SetID       string `json:"set_id" gorm:"index"`
	Set         Set    `json:"set" gorm:"foreignKey:SetID"`
	SetName     string `json:"set_name"`
	Number      string `json:"number"`
	Rarity      string `json:"rarity"`
	Supertype   string `json:"supertype"`
	CardType    string `json:"card_type"`
	Artist      string `json:"artist"`
	ReleaseDate string `json:"release_date"`
	ImageURL    string `json:"image_url"`
	ImageURLHi  string `json:"image_url_hires"`

	PricePoints    `gorm:"embedded"`
	TrendingScore  float64    `json:"trending_score"`
	PriceSource    string     `json:"price_source"` // "api", "cached", or "pending"
	PriceUpdatedAt *time.Time `json:"price_updated_at"`
	LastPriceCheck *time.Time `json:"last_price_check"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}
