package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

type WatchlistHandler struct {
	priceService *services.PriceService
	userID       func(*gin.Context) string
}

func NewWatchlistHandler(priceService *services.PriceService, userID func(*gin.Context) string) *WatchlistHandler {
	return &WatchlistHandler{
		priceService: priceService,
		userID:       userID,
	}
}

// watchlistItem is an entry plus the current resolved price
type watchlistItem struct {
	models.WatchlistEntry
	CurrentPrice float64 `json:"current_price"`
}

func (h *WatchlistHandler) withPrices(entries []models.WatchlistEntry) []watchlistItem {
	items := make([]watchlistItem, len(entries))
	for i, entry := range entries {
		items[i] = watchlistItem{
			WatchlistEntry: entry,
			CurrentPrice:   h.priceService.Resolve(&entry.Card, models.GradingUngraded).Price,
		}
	}
	return items
}

// GetWatchlist lists the user's watched cards
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	var entries []models.WatchlistEntry
	err := database.GetDB().Preload("Card").
		Where("user_id = ?", h.userID(c)).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.withPrices(entries))
}

// AddEntry watches a card, optionally with an alert threshold
func (h *WatchlistHandler) AddEntry(c *gin.Context) {
	var req models.AddWatchlistRequest
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

	if req.AlertThreshold != nil && *req.AlertThreshold <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert threshold must be positive"})
		return
	}

	direction := models.AlertAbove
	if req.AlertDirection == string(models.AlertBelow) {
		direction = models.AlertBelow
	}

	entry := models.WatchlistEntry{
		UserID:         h.userID(c),
		CardID:         req.CardID,
		AlertThreshold: req.AlertThreshold,
		AlertDirection: direction,
		Active:         true,
	}

	if err := db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry.Card = card
	c.JSON(http.StatusCreated, h.withPrices([]models.WatchlistEntry{entry})[0])
}

// UpdateEntry edits threshold, direction, or active flag. Changing any of
// them re-arms a triggered alert.
func (h *WatchlistHandler) UpdateEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req models.UpdateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var entry models.WatchlistEntry
	if err := db.Preload("Card").First(&entry, "id = ? AND user_id = ?", id, h.userID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	changed := false
	if req.AlertThreshold != nil {
		if *req.AlertThreshold <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "alert threshold must be positive"})
			return
		}
		entry.AlertThreshold = req.AlertThreshold
		changed = true
	}
	if req.AlertDirection != nil {
		if *req.AlertDirection != string(models.AlertAbove) && *req.AlertDirection != string(models.AlertBelow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "alert direction must be 'above' or 'below'"})
			return
		}
		entry.AlertDirection = models.AlertDirection(*req.AlertDirection)
		changed = true
	}
	if req.Active != nil {
		entry.Active = *req.Active
		changed = true
	}
	if changed {
		entry.TriggeredAt = nil
	}

	if err := db.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.withPrices([]models.WatchlistEntry{entry})[0])
}

// DeleteEntry removes a watched card
func (h *WatchlistHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	result := database.GetDB().Where("id = ? AND user_id = ?", id, h.userID(c)).Delete(&models.WatchlistEntry{})
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

// GetAlerts lists the user's triggered alerts
func (h *WatchlistHandler) GetAlerts(c *gin.Context) {
	var entries []models.WatchlistEntry
	err := database.GetDB().Preload("Card").
		Where("user_id = ? AND triggered_at IS NOT NULL", h.userID(c)).
		Order("triggered_at DESC").
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.withPrices(entries))
}
