package valuation

import (
	"math"
	"testing"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

func TestResolvePrice_ExactTier(t *testing.T) {
	prices := models.PricePoints{
		Ungraded: 10,
		PSA7:     20,
		PSA8:     40,
		PSA9:     80,
		PSA10:    160,
	}

	tests := []struct {
		status   models.GradingStatus
		expected float64
	}{
		{models.GradingUngraded, 10},
		{models.GradingPSA7, 20},
		{models.GradingPSA8, 40},
		{models.GradingPSA9, 80},
		{models.GradingPSA10, 160},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := ResolvePrice(prices, tt.status)
			if got != tt.expected {
				t.Errorf("ResolvePrice(%s) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestResolvePrice_FallbackCascade(t *testing.T) {
	// PSA9 missing falls to PSA10
	prices := models.PricePoints{Ungraded: 10, PSA10: 160}
	if got := ResolvePrice(prices, models.GradingPSA9); got != 160 {
		t.Errorf("PSA9 should fall back to PSA10 price, got %v", got)
	}

	// PSA8 missing falls to PSA9, never PSA10
	prices = models.PricePoints{Ungraded: 10, PSA9: 80, PSA10: 160}
	if got := ResolvePrice(prices, models.GradingPSA8); got != 80 {
		t.Errorf("PSA8 should fall back to PSA9 price, got %v", got)
	}

	// PSA7 missing falls to PSA8
	prices = models.PricePoints{Ungraded: 10, PSA8: 40}
	if got := ResolvePrice(prices, models.GradingPSA7); got != 40 {
		t.Errorf("PSA7 should fall back to PSA8 price, got %v", got)
	}
}

func TestResolvePrice_UngradedFallback(t *testing.T) {
	prices := models.PricePoints{Ungraded: 10}
	for _, status := range models.AllGradingStatuses() {
		if got := ResolvePrice(prices, status); got != 10 {
			t.Errorf("%s with only ungraded present should return 10, got %v", status, got)
		}
	}
}

func TestResolvePrice_AllAbsent(t *testing.T) {
	for _, status := range models.AllGradingStatuses() {
		if got := ResolvePrice(models.PricePoints{}, status); got != 0 {
			t.Errorf("%s with no prices should return 0, got %v", status, got)
		}
	}

	// Negative values count as absent too
	prices := models.PricePoints{Ungraded: -5, PSA10: -1}
	if got := ResolvePrice(prices, models.GradingPSA10); got != 0 {
		t.Errorf("negative tiers should be skipped, got %v", got)
	}
}

func TestResolvePrice_UnknownStatusUsesUngraded(t *testing.T) {
	prices := models.PricePoints{Ungraded: 10, PSA10: 160}
	if got := ResolvePrice(prices, models.GradingStatus("bgs-10")); got != 10 {
		t.Errorf("unknown status should resolve ungraded, got %v", got)
	}
}

func TestComputeReturn(t *testing.T) {
	r := ComputeReturn(150, 5000, 1)
	if r.Profit != 4850 {
		t.Errorf("expected profit 4850, got %v", r.Profit)
	}
	if math.Abs(r.ROIPercent-3233.333333) > 0.001 {
		t.Errorf("expected ROI ~3233.33, got %v", r.ROIPercent)
	}
}

func TestComputeReturn_ZeroPurchasePrice(t *testing.T) {
	r := ComputeReturn(0, 25, 4)
	if r.ROIPercent != 0 {
		t.Errorf("zero purchase price must yield ROI 0, got %v", r.ROIPercent)
	}
	if r.Profit != 100 {
		t.Errorf("expected profit 100 (current * qty), got %v", r.Profit)
	}
}

func TestComputeReturn_Loss(t *testing.T) {
	r := ComputeReturn(100, 60, 2)
	if r.Profit != -80 {
		t.Errorf("expected profit -80, got %v", r.Profit)
	}
	if r.ROIPercent != -40 {
		t.Errorf("expected ROI -40, got %v", r.ROIPercent)
	}
}

func TestEstimateGradingCost_Boundaries(t *testing.T) {
	tests := []struct {
		value    float64
		expected float64
	}{
		{0, 19},
		{198.99, 19},
		{199, 30},   // boundary belongs to the next tier up
		{498.99, 30},
		{499, 50},
		{999, 75},
		{2499, 150},
		{4999, 300},
		{9998.99, 300},
		{9999, 600},
		{10000, 600},
	}

	for _, tt := range tests {
		if got := EstimateGradingCost(tt.value); got != tt.expected {
			t.Errorf("EstimateGradingCost(%v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestCaseExpectedValue(t *testing.T) {
	result := CaseExpectedValue(CaseInput{
		CaseCost:       800,
		PackCount:      216,
		PackFloorValue: 1.5,
		Hits: []CaseHit{
			{Name: "chase alt art", Price: 400, PullRate: 1.0 / 432},
			{Name: "secret rare", Price: 100, PullRate: 1.0 / 216},
		},
	})

	// 216*1.5 + 400*216/432 + 100*216/216 = 324 + 200 + 100 = 624
	if math.Abs(result.ExpectedValue-624) > 0.0001 {
		t.Errorf("expected EV 624, got %v", result.ExpectedValue)
	}
	if math.Abs(result.NetProfit-(-176)) > 0.0001 {
		t.Errorf("expected net profit -176, got %v", result.NetProfit)
	}
	if result.ROIPercent >= 0 {
		t.Errorf("expected negative ROI, got %v", result.ROIPercent)
	}
}

func TestCaseExpectedValue_IgnoresInvalidHits(t *testing.T) {
	result := CaseExpectedValue(CaseInput{
		CaseCost:  100,
		PackCount: 10,
		Hits: []CaseHit{
			{Price: 0, PullRate: 0.5},
			{Price: 50, PullRate: 0},
			{Price: -10, PullRate: 0.1},
		},
	})
	if result.ExpectedValue != 0 {
		t.Errorf("hits without price or rate should contribute nothing, got %v", result.ExpectedValue)
	}
}
