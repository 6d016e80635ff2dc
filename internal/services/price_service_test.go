package services

import (
	"testing"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

func TestIsFresh(t *testing.T) {
	svc := &PriceService{}

	// nil should not be fresh
	if svc.isFresh(nil) {
		t.Error("nil time should not be fresh")
	}

	// Time within threshold should be fresh
	recent := time.Now().Add(-1 * time.Hour)
	if !svc.isFresh(&recent) {
		t.Error("Time 1 hour ago should be fresh")
	}

	// Time just within threshold should be fresh
	threshold := time.Now().Add(-PriceStalenessThreshold + time.Minute)
	if !svc.isFresh(&threshold) {
		t.Error("Time just within threshold should be fresh")
	}

	// Time beyond threshold should not be fresh
	old := time.Now().Add(-PriceStalenessThreshold - time.Hour)
	if svc.isFresh(&old) {
		t.Error("Time beyond threshold should not be fresh")
	}
}

func TestGetJustTCGRequestsRemaining(t *testing.T) {
	// With nil JustTCG service
	svc := &PriceService{}
	if svc.GetJustTCGRequestsRemaining() != 0 {
		t.Error("Should return 0 when JustTCG service is nil")
	}

	// With JustTCG service
	justTCG := NewJustTCGService("", 100)
	svc = &PriceService{justTCG: justTCG}
	if remaining := svc.GetJustTCGRequestsRemaining(); remaining != 100 {
		t.Errorf("Expected 100 remaining, got %d", remaining)
	}
}

func TestResolvePrefersMergedRecord(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	card := models.Card{ID: "base1-4", Name: "Charizard"}
	card.PricePoints.Ungraded = 100 // denormalized, should lose to the record
	db.Create(&card)
	db.Create(&models.PricingRecord{
		CardID:        "base1-4",
		Source:        models.SourceMerged,
		PricePoints:   models.PricePoints{Ungraded: 250, PSA10: 5000},
		LastUpdatedAt: &now,
	})

	svc := NewPriceService(db, nil)

	resolved := svc.Resolve(&card, models.GradingUngraded)
	if resolved.Price != 250 {
		t.Errorf("Expected merged record price 250, got %f", resolved.Price)
	}
	if resolved.Source != models.SourceMerged {
		t.Errorf("Expected merged source, got %s", resolved.Source)
	}

	resolved = svc.Resolve(&card, models.GradingPSA10)
	if resolved.Price != 5000 {
		t.Errorf("Expected PSA10 price 5000, got %f", resolved.Price)
	}
}

func TestResolveMarksStaleRecords(t *testing.T) {
	db := newTestDB(t)
	stale := time.Now().Add(-2 * PriceStalenessThreshold)

	card := models.Card{ID: "sv1-1", Name: "Sprigatito"}
	db.Create(&card)
	db.Create(&models.PricingRecord{
		CardID:        "sv1-1",
		Source:        models.SourceMerged,
		PricePoints:   models.PricePoints{Ungraded: 2.5},
		LastUpdatedAt: &stale,
	})

	svc := NewPriceService(db, nil)
	resolved := svc.Resolve(&card, models.GradingUngraded)
	if resolved.Source != models.SourceMerged+" (stale)" {
		t.Errorf("Expected stale marker, got %s", resolved.Source)
	}
	if resolved.Price != 2.5 {
		t.Errorf("Stale price is still served: expected 2.5, got %f", resolved.Price)
	}
}

func TestResolveFallsBackToCardPoints(t *testing.T) {
	db := newTestDB(t)

	card := models.Card{ID: "neo1-1", Name: "Ampharos"}
	card.PricePoints.Ungraded = 12
	db.Create(&card)

	svc := NewPriceService(db, nil)
	resolved := svc.Resolve(&card, models.GradingUngraded)
	if resolved.Price != 12 {
		t.Errorf("Expected denormalized price 12, got %f", resolved.Price)
	}
	if resolved.Source != "cached" {
		t.Errorf("Expected cached source, got %s", resolved.Source)
	}
}

func TestResolveNoData(t *testing.T) {
	db := newTestDB(t)
	card := models.Card{ID: "none-1", Name: "Missingno"}
	db.Create(&card)

	svc := NewPriceService(db, nil)
	resolved := svc.Resolve(&card, models.GradingPSA10)
	if resolved.Price != 0 {
		t.Errorf("Expected zero price, got %f", resolved.Price)
	}
	if resolved.Source != "" {
		t.Errorf("Expected empty source, got %s", resolved.Source)
	}
}

func TestNeedsRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := NewPriceService(db, nil)

	// No records means refresh
	if !svc.NeedsRefresh("unknown-1") {
		t.Error("Card with no records should need refresh")
	}

	// Fresh record means no refresh
	now := time.Now()
	db.Create(&models.PricingRecord{
		CardID:        "fresh-1",
		Source:        models.SourceCatalog,
		PricePoints:   models.PricePoints{Ungraded: 1},
		LastUpdatedAt: &now,
	})
	if svc.NeedsRefresh("fresh-1") {
		t.Error("Card with fresh record should not need refresh")
	}

	// Stale record means refresh
	stale := now.Add(-2 * PriceStalenessThreshold)
	db.Create(&models.PricingRecord{
		CardID:        "stale-1",
		Source:        models.SourceCatalog,
		PricePoints:   models.PricePoints{Ungraded: 1},
		LastUpdatedAt: &stale,
	})
	if !svc.NeedsRefresh("stale-1") {
		t.Error("Card with stale record should need refresh")
	}
}

func TestGetHistoryPeriods(t *testing.T) {
	db := newTestDB(t)
	svc := NewPriceService(db, nil)

	now := time.Now()
	for _, daysAgo := range []int{1, 10, 60, 400} {
		day := now.AddDate(0, 0, -daysAgo)
		db.Create(&models.PriceHistory{
			CardID:      "base1-4",
			Source:      models.SourceMerged,
			Date:        time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
			PricePoints: models.PricePoints{Ungraded: float64(daysAgo)},
		})
	}

	tests := []struct {
		period string
		want   int
	}{
		{"week", 1},
		{"month", 2},
		{"year", 3},
		{"all", 4},
		{"bogus", 4}, // unknown period falls back to all
	}
	for _, tt := range tests {
		resp, err := svc.GetHistory("base1-4", tt.period)
		if err != nil {
			t.Fatalf("GetHistory(%s) failed: %v", tt.period, err)
		}
		if len(resp.History) != tt.want {
			t.Errorf("GetHistory(%s): expected %d rows, got %d", tt.period, tt.want, len(resp.History))
		}
	}
}

func TestGetMergedRecords(t *testing.T) {
	db := newTestDB(t)

	db.Create(&models.PricingRecord{
		CardID:      "base1-4",
		Source:      models.SourceMerged,
		PricePoints: models.PricePoints{Ungraded: 250},
	})
	db.Create(&models.PricingRecord{
		CardID:      "base1-4",
		Source:      models.SourceCatalog,
		PricePoints: models.PricePoints{Ungraded: 240},
	})
	db.Create(&models.PricingRecord{
		CardID:      "base1-15",
		Source:      models.SourceMerged,
		PricePoints: models.PricePoints{Ungraded: 60},
	})

	svc := NewPriceService(db, nil)

	merged, err := svc.GetMergedRecords([]string{"base1-4", "base1-15", "base1-99"})
	if err != nil {
		t.Fatalf("GetMergedRecords failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("Expected 2 merged records, got %d", len(merged))
	}
	if merged["base1-4"].PricePoints.Ungraded != 250 {
		t.Errorf("Expected the merged row, not a per-source one: got %f", merged["base1-4"].PricePoints.Ungraded)
	}
	if merged["base1-15"].PricePoints.Ungraded != 60 {
		t.Errorf("Expected 60, got %f", merged["base1-15"].PricePoints.Ungraded)
	}
	if _, ok := merged["base1-99"]; ok {
		t.Error("Cards without a merged record should be absent")
	}

	empty, err := svc.GetMergedRecords(nil)
	if err != nil {
		t.Fatalf("GetMergedRecords(nil) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty map for no ids, got %d entries", len(empty))
	}
}
