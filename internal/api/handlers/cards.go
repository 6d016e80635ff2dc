package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/query"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

type CardHandler struct {
	catalog      *services.CatalogService
	priceService *services.PriceService
	priceWorker  *services.PriceWorker
	searchCache  *services.SearchCache
}

func NewCardHandler(catalog *services.CatalogService, priceService *services.PriceService, priceWorker *services.PriceWorker, searchCache *services.SearchCache) *CardHandler {
	return &CardHandler{
		catalog:      catalog,
		priceService: priceService,
		priceWorker:  priceWorker,
		searchCache:  searchCache,
	}
}

// cacheCardsAsync saves cards to the database asynchronously so they can be
// referenced by portfolio and watchlist writes without a second upstream
// round trip
func cacheCardsAsync(cards []models.Card) {
	if len(cards) == 0 {
		return
	}
	cardsToCache := make([]models.Card, len(cards))
	copy(cardsToCache, cards)
	go func(cards []models.Card) {
		db := database.GetDB()
		if err := db.Save(&cards).Error; err != nil {
			log.Printf("Warning: failed to cache %d cards: %v", len(cards), err)
		}
	}(cardsToCache)
}

// SearchCards searches the catalog (or the local cache), then applies the
// filter/sort pipeline. An empty database plus empty upstream yields an
// empty list, never an error.
func (h *CardHandler) SearchCards(c *gin.Context) {
	term := c.Query("q")

	cards, err := h.sourceCards(c, term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// One query for the whole page instead of a lookup per card
	cardIDs := make([]string, len(cards))
	for i := range cards {
		cardIDs[i] = cards[i].ID
	}
	merged, err := h.priceService.GetMergedRecords(cardIDs)
	if err != nil {
		log.Printf("Card search: merged price lookup failed: %v", err)
		merged = nil
	}

	rows := make([]query.Row, len(cards))
	for i := range cards {
		rows[i] = toRow(cards[i], merged[cards[i].ID])
	}

	filters := query.Filters{
		SetID:    c.Query("set_id"),
		Rarity:   c.Query("rarity"),
		CardType: c.Query("card_type"),
		MinPrice: parseFloatDefault(c.Query("min_price"), 0),
		MaxPrice: parseFloatDefault(c.Query("max_price"), 0),
		MinROI:   parseFloatDefault(c.Query("min_roi"), 0),
		MaxROI:   parseFloatDefault(c.Query("max_roi"), 0),
	}

	// The term already narrowed the upstream query; the pipeline
	// re-applies it so local-cache hits filter identically.
	result := query.Apply(rows, term, filters, c.Query("sort"))

	c.JSON(http.StatusOK, gin.H{
		"rows":        result,
		"total_count": len(result),
	})
}

// sourceCards prefers the upstream catalog through the LRU cache and falls
// back to the local card table when the catalog is unreachable
func (h *CardHandler) sourceCards(c *gin.Context, term string) ([]models.Card, error) {
	if term == "" {
		// Browse mode: local cards only
		var cards []models.Card
		if err := database.GetDB().Limit(500).Find(&cards).Error; err != nil {
			return nil, err
		}
		return cards, nil
	}

	if cached := h.searchCache.Get(term); cached != nil {
		return cached.Cards, nil
	}

	result, err := h.catalog.SearchCards(c.Request.Context(), term)
	if err != nil {
		// Upstream down: degrade to whatever we already hold locally
		log.Printf("Card search: catalog unavailable, using local cards: %v", err)
		var cards []models.Card
		if dbErr := database.GetDB().Where("name LIKE ?", "%"+term+"%").Limit(500).Find(&cards).Error; dbErr != nil {
			return nil, dbErr
		}
		return cards, nil
	}

	h.searchCache.Put(term, *result)
	cacheCardsAsync(result.Cards)
	return result.Cards, nil
}

func toRow(card models.Card, merged *models.PricingRecord) query.Row {
	price := card.PricePoints.Ungraded
	var roi float64
	if merged != nil {
		roi = merged.ROIPercentage
		if merged.PricePoints.Ungraded > 0 {
			price = merged.PricePoints.Ungraded
		}
	}
	return query.Row{
		Card:     card,
		Price:    price,
		ROI:      roi,
		Trending: card.TrendingScore,
	}
}

// GetCard returns one card, from cache first, then the catalog
func (h *CardHandler) GetCard(c *gin.Context) {
	id := c.Param("id")

	db := database.GetDB()
	var cachedCard models.Card
	if err := db.First(&cachedCard, "id = ?", id).Error; err == nil {
		c.JSON(http.StatusOK, cachedCard)
		return
	}

	card, err := h.catalog.GetCard(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	cacheCardsAsync([]models.Card{*card})
	c.JSON(http.StatusOK, card)
}

// GetSets lists all synced sets
func (h *CardHandler) GetSets(c *gin.Context) {
	var sets []models.Set
	if err := database.GetDB().Order("release_date DESC").Find(&sets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sets)
}

func parseFloatDefault(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
