package services

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
)

const (
	// defaultBatchSize is the number of cards to refresh per batch
	defaultBatchSize = 25
)

// PriceWorker refreshes prices in the background for the cards people
// actually hold or watch. User-requested refreshes jump the queue.
type PriceWorker struct {
	db             *gorm.DB
	syncService    *SyncService
	priceService   *PriceService
	updateInterval time.Duration
	batchSize      int

	mu sync.RWMutex

	// Priority queue for user-requested refreshes
	urgentQueue []string
	urgentMu    sync.Mutex

	// Stats (reset at midnight)
	cardsUpdatedToday int
	lastUpdateTime    time.Time
	lastStatsDay      time.Time
}

// PriceStatus is the /api/prices/status payload
type PriceStatus struct {
	LastUpdateTime    time.Time `json:"last_update_time"`
	NextUpdateTime    time.Time `json:"next_update_time"`
	CardsUpdatedToday int       `json:"cards_updated_today"`
	BatchSize         int       `json:"batch_size"`
	QueueSize         int       `json:"queue_size"`

	DailyLimit int       `json:"daily_limit"`
	Remaining  int       `json:"remaining"`
	ResetsAt   time.Time `json:"resets_at,omitempty"`
}

func NewPriceWorker(db *gorm.DB, syncService *SyncService, priceService *PriceService, interval time.Duration) *PriceWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &PriceWorker{
		db:             db,
		syncService:    syncService,
		priceService:   priceService,
		batchSize:      defaultBatchSize,
		updateInterval: interval,
	}
}

// QueueRefresh adds a card to the high-priority refresh queue and returns
// its 1-indexed position
func (w *PriceWorker) QueueRefresh(cardID string) int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for i, id := range w.urgentQueue {
		if id == cardID {
			return i + 1
		}
	}
	w.urgentQueue = append(w.urgentQueue, cardID)
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	log.Printf("Price worker: queued refresh for card %s (queue size: %d)", cardID, len(w.urgentQueue))
	return len(w.urgentQueue)
}

// GetQueueSize returns current urgent queue size
func (w *PriceWorker) GetQueueSize() int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()
	return len(w.urgentQueue)
}

// GetStatus reports worker and quota state
func (w *PriceWorker) GetStatus() PriceStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := PriceStatus{
		LastUpdateTime:    w.lastUpdateTime,
		NextUpdateTime:    w.lastUpdateTime.Add(w.updateInterval),
		CardsUpdatedToday: w.cardsUpdatedToday,
		BatchSize:         w.batchSize,
		QueueSize:         w.GetQueueSize(),
		DailyLimit:        w.priceService.GetJustTCGDailyLimit(),
		Remaining:         w.priceService.GetJustTCGRequestsRemaining(),
		ResetsAt:          w.priceService.GetJustTCGResetTime(),
	}
	return status
}

// Start begins the background price update loop. Blocks until ctx is done.
func (w *PriceWorker) Start(ctx context.Context) {
	log.Printf("Price worker started: will update up to %d cards every %v", w.batchSize, w.updateInterval)

	// Run immediately on startup
	if updated, err := w.UpdateBatch(ctx); err != nil {
		log.Printf("Price worker: initial batch update failed: %v", err)
	} else {
		log.Printf("Price worker: initial batch updated %d cards", updated)
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price worker stopping...")
			return
		case <-ticker.C:
			if updated, err := w.UpdateBatch(ctx); err != nil {
				log.Printf("Price worker: batch update failed: %v", err)
			} else if updated > 0 {
				log.Printf("Price worker: batch updated %d cards", updated)
			}
		}
	}
}

// UpdateBatch refreshes a batch of cards with priority ordering:
// 1. User-requested refreshes
// 2. Held/watched cards without prices
// 3. Held/watched cards with the oldest prices
func (w *PriceWorker) UpdateBatch(ctx context.Context) (int, error) {
	w.resetDailyStatsIfNeeded()

	// The by-name source meters a daily quota. When it is configured but
	// exhausted, skip the whole batch and wait for the reset; the urgent
	// queue is preserved for the next run.
	if !w.hasByNameQuota() {
		resetTime := w.priceService.GetJustTCGResetTime()
		log.Printf("Price worker: justtcg quota exhausted, skipping batch until %s", resetTime.Format("15:04"))
		return 0, nil
	}

	cardIDs := w.drainUrgent(w.batchSize)

	if len(cardIDs) < w.batchSize {
		stale, err := w.staleTrackedCards(w.batchSize - len(cardIDs))
		if err != nil {
			return 0, err
		}
		cardIDs = append(cardIDs, stale...)
	}

	updated := 0
	for _, cardID := range cardIDs {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		var card models.Card
		if err := w.db.First(&card, "id = ?", cardID).Error; err != nil {
			log.Printf("Price worker: card %s not found: %v", cardID, err)
			continue
		}

		record, err := w.syncService.SyncPricingForCard(ctx, card.ID, card.Name, card.SetName)
		if err != nil {
			log.Printf("Price worker: failed to refresh card %s: %v", card.ID, err)
			continue
		}
		if record != nil {
			updated++
			metrics.PriceUpdatesTotal.Inc()
		}
	}

	w.mu.Lock()
	w.cardsUpdatedToday += updated
	w.lastUpdateTime = time.Now()
	metrics.PriceUpdatesToday.Set(float64(w.cardsUpdatedToday))
	w.mu.Unlock()

	return updated, nil
}

// hasByNameQuota returns false only when the by-name source is configured
// and its daily quota is spent. An unconfigured source never blocks a batch
// since the other sources still work without it.
func (w *PriceWorker) hasByNameQuota() bool {
	if !w.priceService.JustTCGConfigured() {
		return true
	}
	return w.priceService.GetJustTCGRequestsRemaining() > 0
}

// UpdateCard refreshes one card immediately, returning the updated card
func (w *PriceWorker) UpdateCard(ctx context.Context, cardID string) (*models.Card, error) {
	var card models.Card
	if err := w.db.First(&card, "id = ?", cardID).Error; err != nil {
		return nil, nil
	}

	if _, err := w.syncService.SyncPricingForCard(ctx, card.ID, card.Name, card.SetName); err != nil {
		return nil, err
	}

	if err := w.db.First(&card, "id = ?", cardID).Error; err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.cardsUpdatedToday++
	w.mu.Unlock()
	metrics.PriceUpdatesTotal.Inc()

	return &card, nil
}

func (w *PriceWorker) drainUrgent(max int) []string {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	n := len(w.urgentQueue)
	if n > max {
		n = max
	}
	drained := make([]string, n)
	copy(drained, w.urgentQueue[:n])
	w.urgentQueue = w.urgentQueue[n:]
	metrics.PriceQueueSize.Set(float64(len(w.urgentQueue)))
	return drained
}

// staleTrackedCards returns ids of cards referenced by any portfolio or
// watchlist whose last price check is oldest (or missing)
func (w *PriceWorker) staleTrackedCards(limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var cardIDs []string
	err := w.db.Model(&models.Card{}).
		Select("cards.id").
		Where(`cards.id IN (?)`,
			w.db.Model(&models.PortfolioEntry{}).Select("card_id"),
		).
		Or(`cards.id IN (?)`,
			w.db.Model(&models.WatchlistEntry{}).Select("card_id").Where("active = ?", true),
		).
		Order("cards.last_price_check ASC NULLS FIRST").
		Limit(limit).
		Pluck("cards.id", &cardIDs).Error
	if err != nil {
		return nil, err
	}
	return cardIDs, nil
}

// resetDailyStatsIfNeeded resets cardsUpdatedToday at midnight
func (w *PriceWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Price worker: daily stats reset (previous day: %d cards updated)", w.cardsUpdatedToday)
		}
		w.cardsUpdatedToday = 0
		w.lastStatsDay = today
		metrics.PriceUpdatesToday.Set(0)
	}
}
