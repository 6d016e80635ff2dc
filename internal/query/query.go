// Package query implements the card filter/sort pipeline. Filtering is
// conjunctive, sorting is a stable order over one selected key, and the
// pipeline never mutates its input.
package query

import (
	"math"
	"sort"
	"strings"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

// Row is a card joined with its resolved valuation, the unit the pipeline
// filters and sorts.
type Row struct {
	Card     models.Card `json:"card"`
	Price    float64     `json:"price"`
	ROI      float64     `json:"roi"`
	Trending float64     `json:"trending"`
}

// Filters are conjunctive predicates. Zero-valued fields are vacuously true;
// a zero MaxPrice/MaxROI means unbounded.
type Filters struct {
	SetID    string
	Rarity   string
	CardType string
	MinPrice float64
	MaxPrice float64
	MinROI   float64
	MaxROI   float64
}

// Sort keys accepted by Apply. Anything else leaves the order untouched.
const (
	SortPriceDesc    = "price-desc"
	SortPriceAsc     = "price-asc"
	SortROIDesc      = "roi-desc"
	SortROIAsc       = "roi-asc"
	SortName         = "name"
	SortTrendingDesc = "trending-desc"
)

// IsValidSortKey reports whether s names one of the sort keys above
func IsValidSortKey(s string) bool {
	switch s {
	case SortPriceDesc, SortPriceAsc, SortROIDesc, SortROIAsc, SortName, SortTrendingDesc:
		return true
	}
	return false
}

// Apply filters rows by the search term and filters, then sorts by sortKey.
// The result is a fresh slice; the input is never reordered or modified.
func Apply(rows []Row, term string, f Filters, sortKey string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, term, f) {
			out = append(out, r)
		}
	}
	sortRows(out, sortKey)
	return out
}

func matches(r Row, term string, f Filters) bool {
	if term != "" {
		needle := strings.ToLower(term)
		if !strings.Contains(strings.ToLower(r.Card.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Card.SetName), needle) &&
			!strings.Contains(strings.ToLower(r.Card.Number), needle) {
			return false
		}
	}

	if f.SetID != "" && r.Card.SetID != f.SetID {
		return false
	}
	if f.Rarity != "" && r.Card.Rarity != f.Rarity {
		return false
	}
	if f.CardType != "" && r.Card.CardType != f.CardType {
		return false
	}

	maxPrice := f.MaxPrice
	if maxPrice == 0 {
		maxPrice = math.Inf(1)
	}
	if r.Price < f.MinPrice || r.Price > maxPrice {
		return false
	}

	maxROI := f.MaxROI
	if maxROI == 0 {
		maxROI = math.Inf(1)
	}
	if r.ROI < f.MinROI || r.ROI > maxROI {
		return false
	}

	return true
}

func sortRows(rows []Row, key string) {
	var less func(a, b Row) bool

	switch key {
	case SortPriceDesc:
		less = func(a, b Row) bool { return a.Price > b.Price }
	case SortPriceAsc:
		less = func(a, b Row) bool { return a.Price < b.Price }
	case SortROIDesc:
		less = func(a, b Row) bool { return a.ROI > b.ROI }
	case SortROIAsc:
		less = func(a, b Row) bool { return a.ROI < b.ROI }
	case SortName:
		less = func(a, b Row) bool { return a.Card.Name < b.Card.Name }
	case SortTrendingDesc:
		less = func(a, b Row) bool { return a.Trending > b.Trending }
	default:
		// Unrecognized key keeps input order
		return
	}

	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
