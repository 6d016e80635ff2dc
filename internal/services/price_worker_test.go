package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	err := db.AutoMigrate(&models.PortfolioEntry{}, &models.WatchlistEntry{})
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestUpdateBatchSkipsWhenQuotaExhausted(t *testing.T) {
	db := newWorkerTestDB(t)
	db.Create(&models.Card{ID: "base1-4", Name: "Charizard", SetName: "Base Set"})

	catalog := &fakeSource{name: "catalog", available: true, points: &models.PricePoints{Ungraded: 250}}
	syncService := NewSyncService(db, nil, catalog)

	// A keyed by-name source with its single daily request already spent
	justTCG := NewJustTCGService("test-key", 1)
	if !justTCG.checkDailyLimit() {
		t.Fatal("First request should be within quota")
	}
	if remaining := justTCG.GetRequestsRemaining(); remaining != 0 {
		t.Fatalf("Expected quota exhausted, got %d remaining", remaining)
	}

	priceService := NewPriceService(db, justTCG)
	worker := NewPriceWorker(db, syncService, priceService, time.Minute)
	worker.QueueRefresh("base1-4")

	updated, err := worker.UpdateBatch(context.Background())
	if err != nil {
		t.Fatalf("UpdateBatch failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected 0 cards updated while quota is exhausted, got %d", updated)
	}
	if catalog.calls != 0 {
		t.Errorf("Expected no source fetches during a skipped batch, got %d", catalog.calls)
	}
	// The urgent queue must survive the skip for the next run
	if size := worker.GetQueueSize(); size != 1 {
		t.Errorf("Expected urgent queue untouched (size 1), got %d", size)
	}
}

func TestUpdateBatchRunsWithoutByNameKey(t *testing.T) {
	db := newWorkerTestDB(t)
	db.Create(&models.Card{ID: "base1-4", Name: "Charizard", SetName: "Base Set"})
	db.Create(&models.PortfolioEntry{UserID: "user-1", CardID: "base1-4", PurchasePrice: 100, Quantity: 1})

	catalog := &fakeSource{name: "catalog", available: true, points: &models.PricePoints{Ungraded: 250}}
	syncService := NewSyncService(db, nil, catalog)

	// No API key: the other sources still work, so batches keep running
	priceService := NewPriceService(db, NewJustTCGService("", 0))
	worker := NewPriceWorker(db, syncService, priceService, time.Minute)

	updated, err := worker.UpdateBatch(context.Background())
	if err != nil {
		t.Fatalf("UpdateBatch failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("Expected 1 card updated, got %d", updated)
	}
	if catalog.calls != 1 {
		t.Errorf("Expected 1 source fetch, got %d", catalog.calls)
	}
}
