package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/export"
	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/services"
	"github.com/cardfolio/cardfolio/backend/internal/valuation"
)

// Maximum quantity allowed per portfolio entry
const maxQuantity = 9999

type PortfolioHandler struct {
	priceService *services.PriceService
	priceWorker  *services.PriceWorker
	userID       func(*gin.Context) string
}

// NewPortfolioHandler builds the handler. userID extracts the
// authenticated user from the request context; every query is scoped by it.
func NewPortfolioHandler(priceService *services.PriceService, priceWorker *services.PriceWorker, userID func(*gin.Context) string) *PortfolioHandler {
	return &PortfolioHandler{
		priceService: priceService,
		priceWorker:  priceWorker,
		userID:       userID,
	}
}

// valueEntry derives the live valuation for one entry. ROI is computed,
// never read from storage.
func (h *PortfolioHandler) valueEntry(entry models.PortfolioEntry) models.PortfolioItem {
	resolved := h.priceService.Resolve(&entry.Card, entry.GradingStatus)
	ret := valuation.ComputeReturn(entry.PurchasePrice, resolved.Price, entry.Quantity)

	return models.PortfolioItem{
		PortfolioEntry:      entry,
		CurrentPrice:        resolved.Price,
		Profit:              ret.Profit,
		ROIPercent:          ret.ROIPercent,
		GradingCostEstimate: valuation.EstimateGradingCost(resolved.Price),
	}
}

func (h *PortfolioHandler) loadItems(userID string) ([]models.PortfolioItem, error) {
	var entries []models.PortfolioEntry
	err := database.GetDB().Preload("Card").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.PortfolioItem, len(entries))
	for i, entry := range entries {
		items[i] = h.valueEntry(entry)
	}
	return items, nil
}

// GetPortfolio lists the user's entries with live valuation
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	items, err := h.loadItems(h.userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddEntry creates a purchase lot. The card must already exist locally
// (search caches it) so we never write an entry pointing nowhere.
func (h *PortfolioHandler) AddEntry(c *gin.Context) {
	var req models.AddPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var card models.Card
	if err := db.First(&card, "id = ?", req.CardID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card not found, please search for it first"})
		return
	}

	if req.PurchasePrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purchase price must be positive"})
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}
	if quantity > maxQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("quantity exceeds maximum allowed (%d)", maxQuantity)})
		return
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_date must be YYYY-MM-DD"})
			return
		}
		purchaseDate = parsed
	}

	entry := models.PortfolioEntry{
		UserID:        h.userID(c),
		CardID:        req.CardID,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  purchaseDate,
		Quantity:      quantity,
		GradingStatus: models.NormalizeGradingStatus(req.GradingStatus),
		Notes:         req.Notes,
	}

	if err := db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry.Card = card
	c.JSON(http.StatusCreated, h.valueEntry(entry))
}

// UpdateEntry edits a lot the user owns
func (h *PortfolioHandler) UpdateEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req models.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var entry models.PortfolioEntry
	if err := db.Preload("Card").First(&entry, "id = ? AND user_id = ?", id, h.userID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	if req.PurchasePrice != nil {
		if *req.PurchasePrice <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchase price must be positive"})
			return
		}
		entry.PurchasePrice = *req.PurchasePrice
	}
	if req.PurchaseDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_date must be YYYY-MM-DD"})
			return
		}
		entry.PurchaseDate = parsed
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 || *req.Quantity > maxQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity out of range"})
			return
		}
		entry.Quantity = *req.Quantity
	}
	if req.GradingStatus != nil {
		entry.GradingStatus = models.NormalizeGradingStatus(*req.GradingStatus)
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := db.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.valueEntry(entry))
}

// DeleteEntry removes a lot the user owns
func (h *PortfolioHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	result := database.GetDB().Where("id = ? AND user_id = ?", id, h.userID(c)).Delete(&models.PortfolioEntry{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetStats aggregates the user's portfolio value and return
func (h *PortfolioHandler) GetStats(c *gin.Context) {
	items, err := h.loadItems(h.userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var stats models.PortfolioStats
	unique := map[string]struct{}{}
	for _, item := range items {
		stats.TotalEntries++
		stats.TotalCards += item.Quantity
		stats.TotalCost += item.PurchasePrice * float64(item.Quantity)
		stats.TotalValue += item.CurrentPrice * float64(item.Quantity)
		unique[item.CardID] = struct{}{}
		if item.GradingStatus == models.GradingUngraded {
			stats.UngradedCards += item.Quantity
		} else {
			stats.GradedCards += item.Quantity
		}
	}
	stats.UniqueCards = len(unique)
	stats.TotalProfit = stats.TotalValue - stats.TotalCost
	if stats.TotalCost > 0 {
		stats.ROIPercent = stats.TotalProfit / stats.TotalCost * 100
	}

	metrics.PortfolioEntriesTotal.Set(float64(stats.TotalEntries))
	metrics.PortfolioValueUSD.Set(stats.TotalValue)

	c.JSON(http.StatusOK, stats)
}

// GetValueHistory returns the user's daily portfolio value snapshots
func (h *PortfolioHandler) GetValueHistory(c *gin.Context) {
	var snapshots []models.PortfolioValueSnapshot
	err := database.GetDB().
		Where("user_id = ?", h.userID(c)).
		Order("snapshot_date ASC").
		Find(&snapshots).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// ExportCSV streams the portfolio as a CSV attachment
func (h *PortfolioHandler) ExportCSV(c *gin.Context) {
	items, err := h.loadItems(h.userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("portfolio-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WritePortfolioCSV(c.Writer, items); err != nil {
		// Headers are already sent; all we can do is record the error
		_ = c.Error(err)
	}
}

// ImportCSV is a placeholder; the import path is not built yet
func (h *PortfolioHandler) ImportCSV(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "CSV import is not implemented yet"})
}

// RefreshPrices queues every card in the user's portfolio for a background
// price refresh
func (h *PortfolioHandler) RefreshPrices(c *gin.Context) {
	var cardIDs []string
	err := database.GetDB().Model(&models.PortfolioEntry{}).
		Where("user_id = ?", h.userID(c)).
		Distinct("card_id").
		Pluck("card_id", &cardIDs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, cardID := range cardIDs {
		h.priceWorker.QueueRefresh(cardID)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued": len(cardIDs),
	})
}
