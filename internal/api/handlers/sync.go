package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

// SyncHandler exposes the batch sync jobs as POST endpoints with no request
// body, mirroring the serverless function contract: {success, counts,
// message} or {error}.
type SyncHandler struct {
	syncService   *services.SyncService
	syncCardLimit int
}

func NewSyncHandler(syncService *services.SyncService, syncCardLimit int) *SyncHandler {
	return &SyncHandler{
		syncService:   syncService,
		syncCardLimit: syncCardLimit,
	}
}

// SyncSets pulls all sets and the cards of any set we have none for
func (h *SyncHandler) SyncSets(c *gin.Context) {
	ctx := c.Request.Context()

	setCount, err := h.syncService.SyncSets(ctx)
	if err != nil {
		log.Printf("Sync endpoint: set sync failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// Backfill cards for sets that have none yet
	var emptySetIDs []string
	err = database.GetDB().Model(&models.Set{}).
		Where("id NOT IN (?)", database.GetDB().Model(&models.Card{}).Distinct("set_id")).
		Limit(5).
		Pluck("id", &emptySetIDs).Error
	if err != nil {
		log.Printf("Sync endpoint: failed to find empty sets: %v", err)
	}

	cardCount := 0
	for _, setID := range emptySetIDs {
		n, err := h.syncService.SyncCardsForSet(ctx, setID, h.syncCardLimit)
		if err != nil {
			// One bad set must not fail the batch
			log.Printf("Sync endpoint: card sync failed for set %s: %v", setID, err)
			continue
		}
		cardCount += n
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"counts":  gin.H{"sets": setCount, "cards": cardCount},
		"message": "set sync completed",
	})
}

// SyncPricing refreshes pricing for every card referenced by a portfolio
// or watchlist
func (h *SyncHandler) SyncPricing(c *gin.Context) {
	ctx := c.Request.Context()
	db := database.GetDB()

	var cardIDs []string
	err := db.Model(&models.Card{}).
		Where("id IN (?)", db.Model(&models.PortfolioEntry{}).Distinct("card_id")).
		Or("id IN (?)", db.Model(&models.WatchlistEntry{}).Distinct("card_id")).
		Pluck("id", &cardIDs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	synced := 0
	for _, cardID := range cardIDs {
		var card models.Card
		if err := db.First(&card, "id = ?", cardID).Error; err != nil {
			continue
		}
		record, err := h.syncService.SyncPricingForCard(ctx, card.ID, card.Name, card.SetName)
		if err != nil {
			log.Printf("Sync endpoint: pricing sync failed for card %s: %v", card.ID, err)
			continue
		}
		if record != nil {
			synced++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"counts":  gin.H{"cards": len(cardIDs), "priced": synced},
		"message": "pricing sync completed",
	})
}
