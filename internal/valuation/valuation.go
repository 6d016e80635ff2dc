// Package valuation holds the pure pricing math: grade-aware price
// resolution, return-on-investment, grading-cost estimation, and the case
// cracker expected-value calculation. No I/O, no database access, so every
// rule here is unit-testable in isolation.
package valuation

import (
	"github.com/cardfolio/cardfolio/backend/internal/models"
)

// ResolvePrice selects the price point matching the grading status, falling
// back down the cascade when a tier is missing. A zero or negative tier
// counts as absent. Returns 0 when nothing is available; callers must
// tolerate a zero price, this never errors.
func ResolvePrice(p models.PricePoints, status models.GradingStatus) float64 {
	var cascade []float64
	switch status {
	case models.GradingPSA10:
		cascade = []float64{p.PSA10, p.Ungraded}
	case models.GradingPSA9:
		cascade = []float64{p.PSA9, p.PSA10, p.Ungraded}
	case models.GradingPSA8:
		cascade = []float64{p.PSA8, p.PSA9, p.Ungraded}
	case models.GradingPSA7:
		cascade = []float64{p.PSA7, p.PSA8, p.Ungraded}
	default:
		cascade = []float64{p.Ungraded}
	}

	for _, v := range cascade {
		if v > 0 {
			return v
		}
	}
	return 0
}

// Return is the outcome of a purchase at current prices
type Return struct {
	Profit     float64 `json:"profit"`
	ROIPercent float64 `json:"roi_percent"`
}

// ComputeReturn computes profit and percentage return for a lot. A
// non-positive purchase price yields ROI 0 rather than dividing by zero.
// Sign is preserved; rounding and "+" prefixes are a presentation concern.
func ComputeReturn(purchasePrice, currentPrice float64, quantity int) Return {
	r := Return{
		Profit: (currentPrice - purchasePrice) * float64(quantity),
	}
	if purchasePrice > 0 {
		r.ROIPercent = (currentPrice - purchasePrice) / purchasePrice * 100
	}
	return r
}

// gradingTier is one row of the flat-fee table: value strictly below Bound
// pays Fee.
type gradingTier struct {
	Bound float64
	Fee   float64
}

// Evaluated in ascending order, first match wins. A value exactly on a bound
// falls through to the next tier (199 pays 30, not 19).
var gradingTiers = []gradingTier{
	{199, 19},
	{499, 30},
	{999, 50},
	{2499, 75},
	{4999, 150},
	{9999, 300},
}

const gradingFeeTop = 600

// EstimateGradingCost maps a card's value onto the tiered flat grading fee
func EstimateGradingCost(cardValue float64) float64 {
	for _, t := range gradingTiers {
		if cardValue < t.Bound {
			return t.Fee
		}
	}
	return gradingFeeTop
}

// CaseHit is one chase card and its per-pack pull rate
type CaseHit struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	PullRate float64 `json:"pull_rate"` // probability per pack, 0..1
}

// CaseInput describes a sealed case for the expected-value calculation
type CaseInput struct {
	CaseCost       float64   `json:"case_cost"`
	PackCount      int       `json:"pack_count"`
	PackFloorValue float64   `json:"pack_floor_value"` // bulk/baseline value per pack
	Hits           []CaseHit `json:"hits"`
}

// CaseResult is the cracker verdict for one case
type CaseResult struct {
	ExpectedValue float64 `json:"expected_value"`
	NetProfit     float64 `json:"net_profit"`
	ROIPercent    float64 `json:"roi_percent"`
}

// CaseExpectedValue computes the expected pull value of cracking a case:
// per-pack floor value plus the probability-weighted value of each chase
// hit, across all packs, measured against the case cost.
func CaseExpectedValue(in CaseInput) CaseResult {
	packs := float64(in.PackCount)
	ev := in.PackFloorValue * packs
	for _, hit := range in.Hits {
		if hit.PullRate <= 0 || hit.Price <= 0 {
			continue
		}
		ev += hit.Price * hit.PullRate * packs
	}

	ret := ComputeReturn(in.CaseCost, ev, 1)
	return CaseResult{
		ExpectedValue: ev,
		NetProfit:     ret.Profit,
		ROIPercent:    ret.ROIPercent,
	}
}
