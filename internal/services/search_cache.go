package services

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
)

const (
	searchCacheSize = 200
	searchCacheTTL  = 10 * time.Minute
)

type cachedSearch struct {
	result   models.CardSearchResult
	cachedAt time.Time
}

// SearchCache memoizes upstream card searches so repeated queries don't
// burn catalog requests. Keys are normalized search terms.
type SearchCache struct {
	cache *lru.Cache[string, cachedSearch]
}

func NewSearchCache() (*SearchCache, error) {
	cache, err := lru.New[string, cachedSearch](searchCacheSize)
	if err != nil {
		return nil, err
	}
	return &SearchCache{cache: cache}, nil
}

// Get returns the cached result for a term, or nil on miss/expiry
func (c *SearchCache) Get(term string) *models.CardSearchResult {
	entry, ok := c.cache.Get(normalizeSearchTerm(term))
	if !ok || time.Since(entry.cachedAt) > searchCacheTTL {
		metrics.SearchCacheMisses.Inc()
		return nil
	}
	metrics.SearchCacheHits.Inc()
	result := entry.result
	return &result
}

// Put stores a search result
func (c *SearchCache) Put(term string, result models.CardSearchResult) {
	c.cache.Add(normalizeSearchTerm(term), cachedSearch{
		result:   result,
		cachedAt: time.Now(),
	})
}

func normalizeSearchTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
