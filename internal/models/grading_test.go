package models

import "testing"

func TestNormalizeGradingStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected GradingStatus
	}{
		{"psa-10", GradingPSA10},
		{"psa10", GradingPSA10},
		{"PSA 10", GradingPSA10},
		{"psa-9", GradingPSA9},
		{"PSA9", GradingPSA9},
		{"psa-8", GradingPSA8},
		{"psa-7", GradingPSA7},
		{"ungraded", GradingUngraded},
		{"raw", GradingUngraded},
		{"", GradingUngraded},
		{"psa-6", GradingUngraded}, // unsupported grades collapse to ungraded
		{"bgs-9.5", GradingUngraded},
	}

	for _, tt := range tests {
		if got := NormalizeGradingStatus(tt.input); got != tt.expected {
			t.Errorf("NormalizeGradingStatus(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestGradingStatusIsValid(t *testing.T) {
	for _, s := range AllGradingStatuses() {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []GradingStatus{"", "psa-6", "PSA-10", "cgc-10"} {
		if s.IsValid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestPricePointsIsEmpty(t *testing.T) {
	if !(PricePoints{}).IsEmpty() {
		t.Error("Zero value should be empty")
	}
	if (PricePoints{PSA9: 10}).IsEmpty() {
		t.Error("A single tier should make it non-empty")
	}
	if !(PricePoints{Ungraded: -5}).IsEmpty() {
		t.Error("Negative prices count as absent")
	}
}

func TestPricePointsBestGraded(t *testing.T) {
	p := PricePoints{Ungraded: 100, PSA7: 150, PSA9: 400}
	if got := p.BestGraded(); got != 400 {
		t.Errorf("Expected highest present tier 400, got %f", got)
	}

	p = PricePoints{Ungraded: 100}
	if got := p.BestGraded(); got != 0 {
		t.Errorf("No graded tiers should yield 0, got %f", got)
	}

	p = PricePoints{PSA10: 1000, PSA7: 50}
	if got := p.BestGraded(); got != 1000 {
		t.Errorf("PSA10 should win, got %f", got)
	}
}
