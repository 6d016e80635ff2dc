package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/valuation"
)

// GradingHandler serves the stateless calculators: PSA grading cost
// estimates and case-cracker expected value.
type GradingHandler struct{}

func NewGradingHandler() *GradingHandler {
	return &GradingHandler{}
}

// EstimateCost returns the PSA service tier fee for a declared card value.
// GET /api/grading/estimate?value=350
func (h *GradingHandler) EstimateCost(c *gin.Context) {
	raw := c.Query("value")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value query parameter is required"})
		return
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a non-negative number"})
		return
	}

	cost := valuation.EstimateGradingCost(value)
	c.JSON(http.StatusOK, gin.H{
		"declared_value": value,
		"grading_cost":   cost,
	})
}

type caseEVRequest struct {
	CaseCost       float64             `json:"case_cost" binding:"required"`
	PackCount      int                 `json:"pack_count" binding:"required"`
	PackFloorValue float64             `json:"pack_floor_value"`
	Hits           []valuation.CaseHit `json:"hits"`
}

// CaseEV computes the expected value of cracking a sealed case.
// POST /api/casecracker/ev
func (h *GradingHandler) CaseEV(c *gin.Context) {
	var req caseEVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.CaseCost <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "case_cost must be positive"})
		return
	}
	if req.PackCount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pack_count must be positive"})
		return
	}

	result := valuation.CaseExpectedValue(valuation.CaseInput{
		CaseCost:       req.CaseCost,
		PackCount:      req.PackCount,
		PackFloorValue: req.PackFloorValue,
		Hits:           req.Hits,
	})
	c.JSON(http.StatusOK, result)
}
