package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/query"
)

var knownProviders = map[string]bool{
	"pokemontcg":   true,
	"pricetracker": true,
	"justtcg":      true,
}

// UserHandler manages per-user preferences and upstream API keys
type UserHandler struct {
	userID func(*gin.Context) string
}

func NewUserHandler(userID func(*gin.Context) string) *UserHandler {
	return &UserHandler{userID: userID}
}

// GetPreferences returns the user's preferences, creating defaults on
// first read so the client always gets a full record back.
func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID := h.userID(c)
	db := database.GetDB()

	var prefs models.UserPreference
	err := db.First(&prefs, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		prefs = models.UserPreference{
			UserID:         userID,
			Currency:       "USD",
			DefaultSortKey: "price-desc",
			GradingCompany: "PSA",
		}
		if err := db.Create(&prefs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences patches the provided fields only
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID := h.userID(c)

	var req models.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	db := database.GetDB()
	var prefs models.UserPreference
	if err := db.Where(models.UserPreference{UserID: userID}).FirstOrCreate(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Currency != nil {
		prefs.Currency = strings.ToUpper(*req.Currency)
	}
	if req.DefaultSortKey != nil {
		if !query.IsValidSortKey(*req.DefaultSortKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key: " + *req.DefaultSortKey})
			return
		}
		prefs.DefaultSortKey = *req.DefaultSortKey
	}
	if req.GradingCompany != nil {
		prefs.GradingCompany = *req.GradingCompany
	}

	if err := db.Save(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// redactedKey masks everything but the last four characters
func redactedKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// GetAPIKeys lists the user's stored keys with values redacted
func (h *UserHandler) GetAPIKeys(c *gin.Context) {
	userID := h.userID(c)

	var keys []models.UserAPIKey
	err := database.GetDB().
		Where("user_id = ?", userID).
		Order("provider ASC").
		Find(&keys).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i := range keys {
		keys[i].APIKey = redactedKey(keys[i].APIKey)
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys, "count": len(keys)})
}

// UpsertAPIKey stores or replaces the user's key for one provider
func (h *UserHandler) UpsertAPIKey(c *gin.Context) {
	userID := h.userID(c)

	var req models.UpsertAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if !knownProviders[provider] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider: " + req.Provider})
		return
	}

	key := models.UserAPIKey{
		ID:       uuid.New().String(),
		UserID:   userID,
		Provider: provider,
		APIKey:   req.APIKey,
	}
	err := database.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "updated_at"}),
	}).Create(&key).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	key.APIKey = redactedKey(req.APIKey)
	c.JSON(http.StatusOK, key)
}

// DeleteAPIKey removes the user's key for one provider
func (h *UserHandler) DeleteAPIKey(c *gin.Context) {
	userID := h.userID(c)
	provider := strings.ToLower(c.Param("provider"))

	result := database.GetDB().
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.UserAPIKey{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no key stored for provider"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API key deleted"})
}
