package models

import "strings"

// GradingStatus is the certification tier of a card. It determines which
// price point applies when valuing a portfolio entry.
type GradingStatus string

const (
	GradingUngraded GradingStatus = "ungraded"
	GradingPSA7     GradingStatus = "psa-7"
	GradingPSA8     GradingStatus = "psa-8"
	GradingPSA9     GradingStatus = "psa-9"
	GradingPSA10    GradingStatus = "psa-10"
)

// AllGradingStatuses returns every valid grading status
func AllGradingStatuses() []GradingStatus {
	return []GradingStatus{
		GradingUngraded,
		GradingPSA7,
		GradingPSA8,
		GradingPSA9,
		GradingPSA10,
	}
}

// IsValid reports whether s is one of the known grading statuses
func (s GradingStatus) IsValid() bool {
	switch s {
	case GradingUngraded, GradingPSA7, GradingPSA8, GradingPSA9, GradingPSA10:
		return true
	}
	return false
}

// NormalizeGradingStatus maps loose user/API spellings ("PSA 10", "psa10",
// "raw") onto the canonical enum. Unknown or empty input maps to ungraded.
func NormalizeGradingStatus(s string) GradingStatus {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "psa7", "psa-7":
		return GradingPSA7
	case "psa8", "psa-8":
		return GradingPSA8
	case "psa9", "psa-9":
		return GradingPSA9
	case "psa10", "psa-10":
		return GradingPSA10
	default:
		return GradingUngraded
	}
}

// PricePoints is the fixed-shape price-by-grade record shared by cards and
// pricing records. A zero value means the tier is absent.
type PricePoints struct {
	Ungraded float64 `json:"price_ungraded"`
	PSA7     float64 `json:"price_psa7"`
	PSA8     float64 `json:"price_psa8"`
	PSA9     float64 `json:"price_psa9"`
	PSA10    float64 `json:"price_psa10"`
}

// IsEmpty reports whether no tier carries a price
func (p PricePoints) IsEmpty() bool {
	return p.Ungraded <= 0 && p.PSA7 <= 0 && p.PSA8 <= 0 && p.PSA9 <= 0 && p.PSA10 <= 0
}

// BestGraded returns the highest graded tier that has a price, or 0
func (p PricePoints) BestGraded() float64 {
	for _, v := range []float64{p.PSA10, p.PSA9, p.PSA8, p.PSA7} {
		if v > 0 {
			return v
		}
	}
	return 0
}
