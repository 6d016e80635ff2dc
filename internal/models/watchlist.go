package models

import (
	"time"
)

// AlertDirection says which way the price has to cross the threshold
type AlertDirection string

const (
	AlertAbove AlertDirection = "above"
	AlertBelow AlertDirection = "below"
)

// WatchlistEntry is a card a user is tracking, optionally with a price
// alert. TriggeredAt is set once when the threshold is crossed so the alert
// fires only once until the user re-arms it.
type WatchlistEntry struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         string         `json:"user_id" gorm:"not null;index"`
	CardID         string         `json:"card_id" gorm:"not null;index"`
	Card           Card           `json:"card" gorm:"foreignKey:CardID"`
	AlertThreshold *float64       `json:"alert_threshold"`
	AlertDirection AlertDirection `json:"alert_direction" gorm:"default:'above'"`
	Active         bool           `json:"active" gorm:"default:true"`
	TriggeredAt    *time.Time     `json:"triggered_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type AddWatchlistRequest struct {
	CardID         string   `json:"card_id" binding:"required"`
	AlertThreshold *float64 `json:"alert_threshold"`
	AlertDirection string   `json:"alert_direction"`
}

type UpdateWatchlistRequest struct {
	AlertThreshold *float64 `json:"alert_threshold"`
	AlertDirection *string  `json:"alert_direction"`
	Active         *bool    `json:"active"`
}
