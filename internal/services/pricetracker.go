package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

const priceTrackerBaseURL = "https://www.pokemonpricetracker.com/api/v2"

// PriceTrackerService looks prices up by product id. It is the only source
// that carries graded PSA tiers.
type PriceTrackerService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewPriceTrackerService(apiKey string) *PriceTrackerService {
	return &PriceTrackerService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: priceTrackerBaseURL,
	}
}

type trackerResponse struct {
	Data []trackerCard `json:"data"`
}

type trackerCard struct {
	Prices     trackerPrices `json:"prices"`
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	SetName    string        `json:"setName"`
	CardNumber string        `json:"cardNumber"`
}

type trackerPrices struct {
	Market float64            `json:"market"`
	Graded map[string]float64 `json:"graded"` // "psa7".."psa10"
}

// Name identifies this pricing source
func (s *PriceTrackerService) Name() string {
	return models.SourcePriceTracker
}

// Available reports whether an API key is configured
func (s *PriceTrackerService) Available() bool {
	return s.apiKey != ""
}

// FetchPricing fetches per-grade prices by card id. Returns (nil, nil) when
// the card is unknown upstream.
func (s *PriceTrackerService) FetchPricing(ctx context.Context, cardID, name, setName string) (*models.PricePoints, error) {
	if !s.Available() {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/cards?id=%s", s.baseURL, url.QueryEscape(cardID))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query price tracker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price tracker API returned status %d", resp.StatusCode)
	}

	var trackerResp trackerResponse
	if err := json.NewDecoder(resp.Body).Decode(&trackerResp); err != nil {
		return nil, fmt.Errorf("failed to decode price tracker response: %w", err)
	}
	if len(trackerResp.Data) == 0 {
		return nil, nil
	}

	tc := trackerResp.Data[0]
	points := models.PricePoints{
		Ungraded: tc.Prices.Market,
		PSA7:     tc.Prices.Graded["psa7"],
		PSA8:     tc.Prices.Graded["psa8"],
		PSA9:     tc.Prices.Graded["psa9"],
		PSA10:    tc.Prices.Graded["psa10"],
	}
	if points.IsEmpty() {
		return nil, nil
	}
	return &points, nil
}
