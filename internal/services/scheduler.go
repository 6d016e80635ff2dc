package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/valuation"
)

// Scheduler runs the daily maintenance jobs: per-user portfolio value
// snapshots, watchlist alert evaluation, and trending score recompute.
type Scheduler struct {
	db           *gorm.DB
	priceService *PriceService
	cron         *cron.Cron
}

func NewScheduler(db *gorm.DB, priceService *PriceService) *Scheduler {
	return &Scheduler{
		db:           db,
		priceService: priceService,
		cron:         cron.New(),
	}
}

// Start registers the jobs and runs the cron loop until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	// Alerts react to price movement, so check hourly; snapshots and
	// trending run once a night after the pricing day settles.
	if _, err := s.cron.AddFunc("0 * * * *", s.EvaluateAlerts); err != nil {
		log.Printf("Scheduler: failed to register alert job: %v", err)
	}
	if _, err := s.cron.AddFunc("0 23 * * *", s.SnapshotPortfolios); err != nil {
		log.Printf("Scheduler: failed to register snapshot job: %v", err)
	}
	if _, err := s.cron.AddFunc("30 23 * * *", s.RecomputeTrending); err != nil {
		log.Printf("Scheduler: failed to register trending job: %v", err)
	}

	s.cron.Start()
	log.Println("Scheduler started: alerts hourly, snapshots and trending nightly")

	<-ctx.Done()
	log.Println("Scheduler stopping...")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// EvaluateAlerts marks watchlist entries whose threshold has been crossed
// in the configured direction. An entry fires once; TriggeredAt stays set
// until the user re-arms it.
func (s *Scheduler) EvaluateAlerts() {
	var entries []models.WatchlistEntry
	err := s.db.Preload("Card").
		Where("active = ? AND triggered_at IS NULL AND alert_threshold IS NOT NULL", true).
		Find(&entries).Error
	if err != nil {
		log.Printf("Scheduler: failed to load watchlist entries: %v", err)
		return
	}

	now := time.Now()
	triggered := 0
	for i := range entries {
		e := &entries[i]
		price := s.priceService.Resolve(&e.Card, models.GradingUngraded).Price
		if price <= 0 {
			continue
		}

		crossed := false
		switch e.AlertDirection {
		case models.AlertBelow:
			crossed = price <= *e.AlertThreshold
		default:
			crossed = price >= *e.AlertThreshold
		}
		if !crossed {
			continue
		}

		if err := s.db.Model(e).Update("triggered_at", now).Error; err != nil {
			log.Printf("Scheduler: failed to mark alert %d triggered: %v", e.ID, err)
			continue
		}
		triggered++
		metrics.WatchlistAlertsTriggered.Inc()
	}

	if triggered > 0 {
		log.Printf("Scheduler: %d watchlist alerts triggered", triggered)
	}
}

// SnapshotPortfolios records today's value of every user's portfolio.
// Idempotent: the (user, date) unique index makes re-runs overwrite.
func (s *Scheduler) SnapshotPortfolios() {
	var userIDs []string
	if err := s.db.Model(&models.PortfolioEntry{}).Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
		log.Printf("Scheduler: failed to list portfolio users: %v", err)
		return
	}

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, userID := range userIDs {
		var entries []models.PortfolioEntry
		if err := s.db.Preload("Card").Where("user_id = ?", userID).Find(&entries).Error; err != nil {
			log.Printf("Scheduler: failed to load portfolio for user %s: %v", userID, err)
			continue
		}

		snapshot := models.PortfolioValueSnapshot{
			UserID:       userID,
			SnapshotDate: day,
		}
		unique := map[string]struct{}{}
		for i := range entries {
			e := &entries[i]
			price := s.priceService.Resolve(&e.Card, e.GradingStatus).Price
			snapshot.TotalCards += e.Quantity
			snapshot.TotalCost += e.PurchasePrice * float64(e.Quantity)
			snapshot.TotalValue += price * float64(e.Quantity)
			unique[e.CardID] = struct{}{}
		}
		snapshot.UniqueCards = len(unique)

		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_cards", "unique_cards", "total_cost", "total_value",
			}),
		}).Create(&snapshot).Error
		if err != nil {
			log.Printf("Scheduler: failed to snapshot portfolio for user %s: %v", userID, err)
		}
	}

	log.Printf("Scheduler: snapshotted %d portfolios", len(userIDs))
}

// RecomputeTrending scores each card by its 7-day ungraded price change.
// Cards without a week of history keep score 0.
func (s *Scheduler) RecomputeTrending() {
	now := time.Now()
	weekAgo := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -7)

	var cardIDs []string
	if err := s.db.Model(&models.PriceHistory{}).Distinct("card_id").Pluck("card_id", &cardIDs).Error; err != nil {
		log.Printf("Scheduler: failed to list cards with history: %v", err)
		return
	}

	updated := 0
	for _, cardID := range cardIDs {
		var oldest, newest models.PriceHistory
		base := s.db.Where("card_id = ? AND source = ? AND date >= ?", cardID, models.SourceMerged, weekAgo)

		if err := base.Session(&gorm.Session{}).Order("date ASC").First(&oldest).Error; err != nil {
			continue
		}
		if err := base.Session(&gorm.Session{}).Order("date DESC").First(&newest).Error; err != nil {
			continue
		}
		if oldest.ID == newest.ID || oldest.Ungraded <= 0 {
			continue
		}

		score := valuation.ComputeReturn(oldest.Ungraded, newest.Ungraded, 1).ROIPercent
		if err := s.db.Model(&models.Card{}).Where("id = ?", cardID).Update("trending_score", score).Error; err != nil {
			log.Printf("Scheduler: failed to update trending score for %s: %v", cardID, err)
			continue
		}
		updated++
	}

	log.Printf("Scheduler: recomputed trending scores for %d cards", updated)
}
