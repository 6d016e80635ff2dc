package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/valuation"
)

const (
	// PriceStalenessThreshold is how old a price can be before it's
	// considered stale
	PriceStalenessThreshold = 24 * time.Hour
)

// PriceService answers price questions from the local cache only. Live
// fetching belongs to the sync service and the background worker.
type PriceService struct {
	db      *gorm.DB
	justTCG *JustTCGService
}

func NewPriceService(db *gorm.DB, justTCG *JustTCGService) *PriceService {
	return &PriceService{
		db:      db,
		justTCG: justTCG,
	}
}

// ResolvedPrice is a card price for one grading status plus where it came
// from
type ResolvedPrice struct {
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// Resolve returns the price for a card at the given grading status.
// Fallback order: merged pricing record -> any per-source record -> the
// card's denormalized points. Missing data yields 0, never an error.
func (s *PriceService) Resolve(card *models.Card, status models.GradingStatus) ResolvedPrice {
	if record := s.bestRecord(card.ID); record != nil {
		source := record.Source
		if !s.isFresh(record.LastUpdatedAt) {
			source += " (stale)"
		}
		if price := valuation.ResolvePrice(record.PricePoints, status); price > 0 {
			return ResolvedPrice{Price: price, Source: source}
		}
	}

	price := valuation.ResolvePrice(card.PricePoints, status)
	source := "cached"
	if price == 0 {
		source = ""
	}
	return ResolvedPrice{Price: price, Source: source}
}

// GetPricingRecords returns every per-source record for a card
func (s *PriceService) GetPricingRecords(cardID string) ([]models.PricingRecord, error) {
	var records []models.PricingRecord
	if err := s.db.Where("card_id = ?", cardID).Order("source").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetMergedRecords loads the merged pricing record for each card id in one
// query, keyed by card id. Cards without a merged record are absent from the
// map.
func (s *PriceService) GetMergedRecords(cardIDs []string) (map[string]*models.PricingRecord, error) {
	merged := make(map[string]*models.PricingRecord, len(cardIDs))
	if len(cardIDs) == 0 {
		return merged, nil
	}
	var records []models.PricingRecord
	if err := s.db.Where("card_id IN ? AND source = ?", cardIDs, models.SourceMerged).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		merged[records[i].CardID] = &records[i]
	}
	return merged, nil
}

// GetHistory returns the price time series for a card over the period
func (s *PriceService) GetHistory(cardID, period string) (*models.PriceHistoryResponse, error) {
	var since time.Time
	now := time.Now()
	switch period {
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	default:
		period = "all"
	}

	query := s.db.Where("card_id = ?", cardID)
	if !since.IsZero() {
		query = query.Where("date >= ?", since)
	}

	var history []models.PriceHistory
	if err := query.Order("date ASC").Find(&history).Error; err != nil {
		return nil, err
	}

	return &models.PriceHistoryResponse{
		CardID:  cardID,
		Period:  period,
		History: history,
	}, nil
}

// NeedsRefresh returns true if the card's pricing is stale or missing
func (s *PriceService) NeedsRefresh(cardID string) bool {
	var records []models.PricingRecord
	if err := s.db.Where("card_id = ?", cardID).Find(&records).Error; err != nil {
		return true
	}
	if len(records) == 0 {
		return true
	}
	for _, r := range records {
		if !s.isFresh(r.LastUpdatedAt) {
			return true
		}
	}
	return false
}

// JustTCGConfigured reports whether the by-name source has an API key
func (s *PriceService) JustTCGConfigured() bool {
	return s.justTCG != nil && s.justTCG.Configured()
}

// GetJustTCGRequestsRemaining returns today's remaining quota, 0 when the
// source is not wired
func (s *PriceService) GetJustTCGRequestsRemaining() int {
	if s.justTCG == nil {
		return 0
	}
	return s.justTCG.GetRequestsRemaining()
}

// GetJustTCGResetTime returns when the quota resets
func (s *PriceService) GetJustTCGResetTime() time.Time {
	if s.justTCG == nil {
		return time.Time{}
	}
	return s.justTCG.GetResetTime()
}

// GetJustTCGDailyLimit returns the configured daily quota, 0 when the
// source is not wired
func (s *PriceService) GetJustTCGDailyLimit() int {
	if s.justTCG == nil {
		return 0
	}
	return s.justTCG.GetDailyLimit()
}

func (s *PriceService) bestRecord(cardID string) *models.PricingRecord {
	var record models.PricingRecord
	err := s.db.Where("card_id = ? AND source = ?", cardID, models.SourceMerged).First(&record).Error
	if err == nil {
		return &record
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Failed to fetch merged pricing record for card %s: %v", cardID, err)
	}

	// Fall back to whichever per-source record is freshest
	err = s.db.Where("card_id = ?", cardID).Order("last_updated_at DESC").First(&record).Error
	if err != nil {
		return nil
	}
	return &record
}

func (s *PriceService) isFresh(updatedAt *time.Time) bool {
	if updatedAt == nil {
		return false
	}
	return time.Since(*updatedAt) <= PriceStalenessThreshold
}
