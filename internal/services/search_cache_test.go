package services

import (
	"testing"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

func TestSearchCacheHitAndMiss(t *testing.T) {
	cache, err := NewSearchCache()
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	if cache.Get("charizard") != nil {
		t.Error("Empty cache should miss")
	}

	result := models.CardSearchResult{
		Cards:      []models.Card{{ID: "base1-4", Name: "Charizard"}},
		TotalCount: 1,
	}
	cache.Put("charizard", result)

	got := cache.Get("charizard")
	if got == nil {
		t.Fatal("Expected cache hit")
	}
	if len(got.Cards) != 1 || got.Cards[0].ID != "base1-4" {
		t.Errorf("Cached result corrupted: %+v", got)
	}
}

func TestSearchCacheNormalizesTerms(t *testing.T) {
	cache, _ := NewSearchCache()
	cache.Put("  Charizard ", models.CardSearchResult{TotalCount: 1})

	if cache.Get("charizard") == nil {
		t.Error("Lookup should be case- and whitespace-insensitive")
	}
	if cache.Get("CHARIZARD") == nil {
		t.Error("Uppercase lookup should hit")
	}
	if cache.Get("blastoise") != nil {
		t.Error("Different term should miss")
	}
}

func TestSearchCacheTTL(t *testing.T) {
	cache, _ := NewSearchCache()
	cache.cache.Add("old", cachedSearch{
		result:   models.CardSearchResult{TotalCount: 1},
		cachedAt: time.Now().Add(-searchCacheTTL - time.Minute),
	})

	if cache.Get("old") != nil {
		t.Error("Expired entry should miss")
	}
}

func TestSearchCacheReturnsCopy(t *testing.T) {
	cache, _ := NewSearchCache()
	cache.Put("x", models.CardSearchResult{TotalCount: 5})

	first := cache.Get("x")
	first.TotalCount = 99

	second := cache.Get("x")
	if second.TotalCount != 5 {
		t.Error("Mutating a returned result must not poison the cache")
	}
}
