package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/valuation"
)

// PricingSource is one upstream price API. A source that is not configured
// reports itself unavailable and is skipped; a source that fails at sync
// time is logged and tolerated.
type PricingSource interface {
	Name() string
	Available() bool
	// FetchPricing returns (nil, nil) when the source has no data for the card
	FetchPricing(ctx context.Context, cardID, name, setName string) (*models.PricePoints, error)
}

// syncCallDelay is the fixed inter-call delay between upstream requests.
// Deliberate: a constant pace, not adaptive backoff.
const syncCallDelay = 500 * time.Millisecond

// SyncService pulls sets, cards, and pricing from the upstream APIs into
// the local schema. All writes are idempotent upserts by natural key.
type SyncService struct {
	db      *gorm.DB
	catalog *CatalogService
	// sources in ascending priority: on per-field merge conflicts the
	// later source wins
	sources []PricingSource
	limiter *rate.Limiter
}

func NewSyncService(db *gorm.DB, catalog *CatalogService, sources ...PricingSource) *SyncService {
	return &SyncService{
		db:      db,
		catalog: catalog,
		sources: sources,
		limiter: rate.NewLimiter(rate.Every(syncCallDelay), 1),
	}
}

// SyncSets upserts all sets from the catalog. Returns the number of sets
// written.
func (s *SyncService) SyncSets(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	sets, err := s.catalog.ListSets(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("sets", "error").Inc()
		return 0, fmt.Errorf("failed to list sets: %w", err)
	}

	count := 0
	for i := range sets {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&sets[i]).Error
		if err != nil {
			log.Printf("Sync: failed to upsert set %s: %v", sets[i].ID, err)
			continue
		}
		count++
	}

	metrics.SyncRunsTotal.WithLabelValues("sets", "ok").Inc()
	metrics.SyncUpsertsTotal.WithLabelValues("sets").Add(float64(count))
	return count, nil
}

// SyncCardsForSet upserts up to limit cards of one set. Price columns are
// left alone so a catalog resync never clobbers synced pricing.
func (s *SyncService) SyncCardsForSet(ctx context.Context, setID string, limit int) (int, error) {
	start := time.Now()
	defer func() { metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	cards, err := s.catalog.ListCards(ctx, setID, limit)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("cards", "error").Inc()
		return 0, fmt.Errorf("failed to list cards for set %s: %w", setID, err)
	}

	count := 0
	for i := range cards {
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "set_id", "set_name", "number", "rarity", "supertype",
				"card_type", "artist", "release_date", "image_url", "image_url_hi",
				"updated_at",
			}),
		}).Create(&cards[i]).Error
		if err != nil {
			log.Printf("Sync: failed to upsert card %s: %v", cards[i].ID, err)
			continue
		}
		count++
	}

	metrics.SyncRunsTotal.WithLabelValues("cards", "ok").Inc()
	metrics.SyncUpsertsTotal.WithLabelValues("cards").Add(float64(count))

	var total int64
	if err := s.db.Model(&models.Card{}).Count(&total).Error; err == nil {
		metrics.CardDatabaseSize.Set(float64(total))
	}
	return count, nil
}

type sourceResult struct {
	source string
	points *models.PricePoints
	err    error
}

// SyncPricingForCard fans out to every available source, merges the partial
// results, and upserts the per-source and merged pricing records plus the
// daily history row. One failing source never fails the aggregate; if no
// source returns data the result is (nil, nil).
func (s *SyncService) SyncPricingForCard(ctx context.Context, cardID, name, setName string) (*models.PricingRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	results := make([]sourceResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		if !src.Available() {
			results[i] = sourceResult{source: src.Name()}
			continue
		}
		wg.Add(1)
		go func(i int, src PricingSource) {
			defer wg.Done()
			points, err := src.FetchPricing(ctx, cardID, name, setName)
			results[i] = sourceResult{source: src.Name(), points: points, err: err}
		}(i, src)
	}
	wg.Wait()

	now := time.Now()
	var fetched []sourceResult
	for _, r := range results {
		if r.err != nil {
			// Partial failure is accepted silently beyond the log line
			log.Printf("Sync: source %s failed for card %s: %v", r.source, cardID, r.err)
			metrics.SyncSourceFailures.WithLabelValues(r.source).Inc()
			continue
		}
		if r.points == nil {
			continue
		}
		fetched = append(fetched, r)
		s.upsertPricingRecord(cardID, r.source, *r.points, now)
	}

	if len(fetched) == 0 {
		metrics.SyncRunsTotal.WithLabelValues("pricing", "empty").Inc()
		return nil, nil
	}

	merged := mergePricePoints(fetched)
	record := &models.PricingRecord{
		CardID:        cardID,
		Source:        models.SourceMerged,
		PricePoints:   merged,
		LastUpdatedAt: &now,
	}
	// Grading upside, computed server-side once both an ungraded and a
	// graded price are resolved
	if graded := merged.BestGraded(); merged.Ungraded > 0 && graded > 0 {
		record.ROIPercentage = valuation.ComputeReturn(merged.Ungraded, graded, 1).ROIPercent
	}

	s.upsertMergedRecord(record, now)
	s.updateCardPrices(cardID, merged, now)
	s.appendHistory(cardID, models.SourceMerged, merged, now)

	metrics.SyncRunsTotal.WithLabelValues("pricing", "ok").Inc()
	metrics.SyncUpsertsTotal.WithLabelValues("pricing").Add(float64(len(fetched) + 1))
	return record, nil
}

// mergePricePoints merges per field: the highest-priority source with a
// price for that field wins. fetched preserves ascending source priority,
// so scan from the back.
func mergePricePoints(fetched []sourceResult) models.PricePoints {
	var merged models.PricePoints
	pick := func(get func(models.PricePoints) float64) float64 {
		for i := len(fetched) - 1; i >= 0; i-- {
			if v := get(*fetched[i].points); v > 0 {
				return v
			}
		}
		return 0
	}

	merged.Ungraded = pick(func(p models.PricePoints) float64 { return p.Ungraded })
	merged.PSA7 = pick(func(p models.PricePoints) float64 { return p.PSA7 })
	merged.PSA8 = pick(func(p models.PricePoints) float64 { return p.PSA8 })
	merged.PSA9 = pick(func(p models.PricePoints) float64 { return p.PSA9 })
	merged.PSA10 = pick(func(p models.PricePoints) float64 { return p.PSA10 })
	return merged
}

func (s *SyncService) upsertPricingRecord(cardID, source string, points models.PricePoints, now time.Time) {
	record := models.PricingRecord{
		CardID:        cardID,
		Source:        source,
		PricePoints:   points,
		LastUpdatedAt: &now,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ungraded", "psa7", "psa8", "psa9", "psa10", "last_updated_at", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		log.Printf("Sync: failed to upsert pricing record %s/%s: %v", cardID, source, err)
	}
}

func (s *SyncService) upsertMergedRecord(record *models.PricingRecord, now time.Time) {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ungraded", "psa7", "psa8", "psa9", "psa10", "roi_percentage",
			"last_updated_at", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		log.Printf("Sync: failed to upsert merged pricing record %s: %v", record.CardID, err)
	}
}

func (s *SyncService) updateCardPrices(cardID string, points models.PricePoints, now time.Time) {
	err := s.db.Model(&models.Card{}).Where("id = ?", cardID).Updates(map[string]any{
		"ungraded":         points.Ungraded,
		"psa7":             points.PSA7,
		"psa8":             points.PSA8,
		"psa9":             points.PSA9,
		"psa10":            points.PSA10,
		"price_source":     "api",
		"price_updated_at": now,
		"last_price_check": now,
	}).Error
	if err != nil {
		log.Printf("Sync: failed to update card prices for %s: %v", cardID, err)
	}
}

func (s *SyncService) appendHistory(cardID, source string, points models.PricePoints, now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	row := models.PriceHistory{
		CardID:      cardID,
		Source:      source,
		Date:        day,
		PricePoints: points,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_id"}, {Name: "source"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ungraded", "psa7", "psa8", "psa9", "psa10",
		}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("Sync: failed to append price history for %s: %v", cardID, err)
	}
}
