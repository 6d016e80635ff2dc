package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/services"
)

type PriceHandler struct {
	priceWorker  *services.PriceWorker
	priceService *services.PriceService
}

func NewPriceHandler(priceWorker *services.PriceWorker, priceService *services.PriceService) *PriceHandler {
	return &PriceHandler{
		priceWorker:  priceWorker,
		priceService: priceService,
	}
}

// GetPriceStatus returns worker state and API quota status
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.priceWorker.GetStatus())
}

// GetCardPrices returns every per-source pricing record for a card
func (h *PriceHandler) GetCardPrices(c *gin.Context) {
	cardID := c.Param("id")

	records, err := h.priceService.GetPricingRecords(cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card_id": cardID,
		"records": records,
	})
}

// GetCardHistory returns the price time series for a card
func (h *PriceHandler) GetCardHistory(c *gin.Context) {
	cardID := c.Param("id")
	period := c.DefaultQuery("period", "month")

	history, err := h.priceService.GetHistory(cardID, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

// RefreshCardPrice refreshes a single card's price right away
func (h *PriceHandler) RefreshCardPrice(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id is required"})
		return
	}

	card, err := h.priceWorker.UpdateCard(c.Request.Context(), cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// QueueRefresh adds a card to the background refresh queue instead of
// refreshing inline
func (h *PriceHandler) QueueRefresh(c *gin.Context) {
	cardID := c.Param("id")
	if cardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id is required"})
		return
	}

	position := h.priceWorker.QueueRefresh(cardID)
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "position": position})
}
