package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewJustTCGService(t *testing.T) {
	// Test with default limit
	svc := NewJustTCGService("test-key", 0)
	if svc.dailyLimit != 100 {
		t.Errorf("Expected default daily limit of 100, got %d", svc.dailyLimit)
	}
	if svc.apiKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got %s", svc.apiKey)
	}

	// Test with custom limit
	svc = NewJustTCGService("", 200)
	if svc.dailyLimit != 200 {
		t.Errorf("Expected daily limit of 200, got %d", svc.dailyLimit)
	}
}

func TestDailyLimiting(t *testing.T) {
	svc := NewJustTCGService("", 3)

	// Should allow 3 requests via checkDailyLimit
	for i := 0; i < 3; i++ {
		if !svc.checkDailyLimit() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 4th request should be blocked
	if svc.checkDailyLimit() {
		t.Error("4th request should be blocked by daily limit")
	}

	// Verify remaining is 0
	remaining := svc.GetRequestsRemaining()
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
}

func TestJustTCGAvailable(t *testing.T) {
	// No API key means unavailable
	svc := NewJustTCGService("", 100)
	if svc.Available() {
		t.Error("Service without API key should not be available")
	}

	// With key and quota it is available
	svc = NewJustTCGService("key", 1)
	if !svc.Available() {
		t.Error("Service with key and quota should be available")
	}

	// Exhausting the quota makes it unavailable
	svc.checkDailyLimit()
	if svc.Available() {
		t.Error("Service with exhausted quota should not be available")
	}
}

func TestJustTCGFetchPricing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": [{
				"card_name": "Charizard",
				"set_name": "Base Set",
				"prices": [
					{"condition": "LP", "price_usd": 180.00},
					{"condition": "NM", "price_usd": 250.00}
				]
			}]
		}`))
	}))
	defer server.Close()

	svc := NewJustTCGService("test-key", 10)
	svc.baseURL = server.URL

	points, err := svc.FetchPricing(context.Background(), "base1-4", "Charizard", "Base Set")
	if err != nil {
		t.Fatalf("FetchPricing failed: %v", err)
	}
	if points == nil {
		t.Fatal("Expected price points, got nil")
	}
	if points.Ungraded != 250.00 {
		t.Errorf("Expected NM price 250.00, got %f", points.Ungraded)
	}
	if points.PSA10 != 0 {
		t.Errorf("JustTCG carries no graded tiers, got PSA10 %f", points.PSA10)
	}

	// Quota should have been consumed
	if remaining := svc.GetRequestsRemaining(); remaining != 9 {
		t.Errorf("Expected 9 requests remaining, got %d", remaining)
	}
}

func TestJustTCGFetchPricingNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewJustTCGService("test-key", 10)
	svc.baseURL = server.URL

	points, err := svc.FetchPricing(context.Background(), "missing", "Nobody", "Nowhere")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if points != nil {
		t.Error("Expected nil points for unknown card")
	}
}

func TestJustTCGFetchPricingQuotaExhausted(t *testing.T) {
	svc := NewJustTCGService("test-key", 1)
	svc.checkDailyLimit()

	_, err := svc.FetchPricing(context.Background(), "base1-4", "Charizard", "Base Set")
	if err == nil {
		t.Error("Expected rate limit error when quota is exhausted")
	}
}

func TestJustTCGFetchPricingNoKey(t *testing.T) {
	svc := NewJustTCGService("", 10)

	points, err := svc.FetchPricing(context.Background(), "base1-4", "Charizard", "Base Set")
	if err != nil {
		t.Fatalf("Missing key should be a silent no-op, got %v", err)
	}
	if points != nil {
		t.Error("Expected nil points without API key")
	}
}
