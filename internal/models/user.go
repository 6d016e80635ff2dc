package models

import (
	"time"
)

// UserPreference holds per-user display and default settings
type UserPreference struct {
	UserID         string    `json:"user_id" gorm:"primaryKey"`
	Currency       string    `json:"currency" gorm:"default:'USD'"`
	DefaultSortKey string    `json:"default_sort_key" gorm:"default:'price-desc'"`
	GradingCompany string    `json:"grading_company" gorm:"default:'PSA'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserAPIKey is the per-user key store for the upstream pricing APIs.
// One key per (user, provider).
type UserAPIKey struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_provider"`
	Provider  string    `json:"provider" gorm:"not null;uniqueIndex:idx_user_provider"`
	APIKey    string    `json:"api_key" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpsertAPIKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

type UpdatePreferencesRequest struct {
	Currency       *string `json:"currency"`
	DefaultSortKey *string `json:"default_sort_key"`
	GradingCompany *string `json:"grading_company"`
}
