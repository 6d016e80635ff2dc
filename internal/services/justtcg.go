package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/metrics"
	"github.com/cardfolio/cardfolio/backend/internal/models"
)

const (
	justTCGBaseURL        = "https://api.justtcg.com/v1"
	justTCGDefaultTimeout = 10 * time.Second
)

// JustTCGService looks prices up by card name. Requests are metered against
// a client-side daily quota so a busy worker can't burn the whole allowance.
type JustTCGService struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	dailyLimit int

	mu             sync.Mutex
	requestsToday  int
	lastRequestDay time.Time
}

type justTCGPriceResponse struct {
	Success bool              `json:"success"`
	Data    []justTCGCardData `json:"data"`
	Error   string            `json:"error,omitempty"`
}

type justTCGCardData struct {
	CardName   string         `json:"card_name"`
	SetName    string         `json:"set_name"`
	CardNumber string         `json:"card_number"`
	Prices     []justTCGPrice `json:"prices"`
}

type justTCGPrice struct {
	Condition string  `json:"condition"` // NM, LP, MP, HP, DMG
	PriceUSD  float64 `json:"price_usd"`
}

func NewJustTCGService(apiKey string, dailyLimit int) *JustTCGService {
	if dailyLimit <= 0 {
		dailyLimit = 100 // Free tier limit
	}

	metrics.JustTCGQuotaLimit.Set(float64(dailyLimit))

	return &JustTCGService{
		client: &http.Client{
			Timeout: justTCGDefaultTimeout,
		},
		apiKey:     apiKey,
		baseURL:    justTCGBaseURL,
		dailyLimit: dailyLimit,
	}
}

// checkDailyLimit consumes one request from today's quota. Returns false
// when the quota is exhausted.
func (s *JustTCGService) checkDailyLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		s.requestsToday = 0
		s.lastRequestDay = today
	}

	if s.requestsToday >= s.dailyLimit {
		return false
	}

	s.requestsToday++
	metrics.JustTCGQuotaRemaining.Set(float64(s.dailyLimit - s.requestsToday))
	return true
}

// GetRequestsRemaining returns the number of requests remaining today
func (s *JustTCGService) GetRequestsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		return s.dailyLimit
	}

	remaining := s.dailyLimit - s.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetResetTime returns when the daily quota resets (next midnight local)
func (s *JustTCGService) GetResetTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
}

// GetDailyLimit returns the configured daily request limit
func (s *JustTCGService) GetDailyLimit() int {
	return s.dailyLimit
}

// Configured reports whether an API key is set, regardless of quota
func (s *JustTCGService) Configured() bool {
	return s.apiKey != ""
}

// Name identifies this pricing source
func (s *JustTCGService) Name() string {
	return models.SourceJustTCG
}

// Available reports whether an API key is configured and quota remains
func (s *JustTCGService) Available() bool {
	return s.apiKey != "" && s.GetRequestsRemaining() > 0
}

// FetchPricing looks the card up by name and set, taking the NM ungraded
// price. JustTCG carries no graded tiers.
func (s *JustTCGService) FetchPricing(ctx context.Context, cardID, name, setName string) (*models.PricePoints, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	if !s.checkDailyLimit() {
		return nil, fmt.Errorf("justtcg daily rate limit exceeded")
	}

	reqURL := fmt.Sprintf("%s/cards?game=pokemon&name=%s&set=%s",
		s.baseURL, url.QueryEscape(name), url.QueryEscape(setName))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query justtcg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("justtcg API returned status %d", resp.StatusCode)
	}

	var priceResp justTCGPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return nil, fmt.Errorf("failed to decode justtcg response: %w", err)
	}
	if !priceResp.Success && priceResp.Error != "" {
		return nil, fmt.Errorf("justtcg API error: %s", priceResp.Error)
	}
	if len(priceResp.Data) == 0 {
		return nil, nil
	}

	for _, p := range priceResp.Data[0].Prices {
		if p.Condition == "NM" && p.PriceUSD > 0 {
			return &models.PricePoints{Ungraded: p.PriceUSD}, nil
		}
	}
	return nil, nil
}
