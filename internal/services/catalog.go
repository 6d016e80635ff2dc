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

const catalogBaseURL = "https://api.pokemontcg.io/v2"

// CatalogService talks to the card catalog API. It is the source of truth
// for sets and card reference data, and contributes ungraded market prices
// to the pricing sync.
type CatalogService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewCatalogService(apiKey string) *CatalogService {
	return &CatalogService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: catalogBaseURL,
	}
}

type catalogSetsResponse struct {
	Data       []catalogSet `json:"data"`
	TotalCount int          `json:"totalCount"`
}

type catalogSet struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Series       string            `json:"series"`
	PrintedTotal int               `json:"printedTotal"`
	Total        int               `json:"total"`
	ReleaseDate  string            `json:"releaseDate"`
	Images       map[string]string `json:"images"`
}

type catalogCardsResponse struct {
	Data       []catalogCard `json:"data"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

type catalogCardResponse struct {
	Data catalogCard `json:"data"`
}

type catalogCard struct {
	TCGPlayer *catalogTCGPrice `json:"tcgplayer"`
	Set       catalogSet       `json:"set"`
	Images    catalogImages    `json:"images"`
	Types     []string         `json:"types"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Number    string           `json:"number"`
	Rarity    string           `json:"rarity"`
	Supertype string           `json:"supertype"`
	Artist    string           `json:"artist"`
}

type catalogImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type catalogTCGPrice struct {
	Prices    map[string]catalogPriceSet `json:"prices"`
	URL       string                     `json:"url"`
	UpdatedAt string                     `json:"updatedAt"`
}

type catalogPriceSet struct {
	Low    float64 `json:"low"`
	Mid    float64 `json:"mid"`
	High   float64 `json:"high"`
	Market float64 `json:"market"`
}

// ListSets fetches all sets from the catalog
func (s *CatalogService) ListSets(ctx context.Context) ([]models.Set, error) {
	reqURL := fmt.Sprintf("%s/sets?orderBy=-releaseDate", s.baseURL)

	var setsResp catalogSetsResponse
	if err := s.getJSON(ctx, reqURL, &setsResp); err != nil {
		return nil, err
	}

	sets := make([]models.Set, len(setsResp.Data))
	for i, cs := range setsResp.Data {
		sets[i] = models.Set{
			ID:           cs.ID,
			Name:         cs.Name,
			Series:       cs.Series,
			PrintedTotal: cs.PrintedTotal,
			Total:        cs.Total,
			ReleaseDate:  cs.ReleaseDate,
			ImageURL:     cs.Images["logo"],
		}
	}
	return sets, nil
}

// ListCards fetches up to limit cards for one set
func (s *CatalogService) ListCards(ctx context.Context, setID string, limit int) ([]models.Card, error) {
	if limit <= 0 || limit > 250 {
		limit = 250
	}
	q := url.QueryEscape(fmt.Sprintf("set.id:%s", setID))
	reqURL := fmt.Sprintf("%s/cards?q=%s&pageSize=%d", s.baseURL, q, limit)

	var cardsResp catalogCardsResponse
	if err := s.getJSON(ctx, reqURL, &cardsResp); err != nil {
		return nil, err
	}

	cards := make([]models.Card, len(cardsResp.Data))
	for i, cc := range cardsResp.Data {
		cards[i] = s.convertToCard(cc)
	}
	return cards, nil
}

// SearchCards queries the catalog by card name prefix
func (s *CatalogService) SearchCards(ctx context.Context, query string) (*models.CardSearchResult, error) {
	encodedQuery := url.QueryEscape(fmt.Sprintf("name:%s*", query))
	reqURL := fmt.Sprintf("%s/cards?q=%s", s.baseURL, encodedQuery)

	var searchResp catalogCardsResponse
	if err := s.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	cards := make([]models.Card, len(searchResp.Data))
	for i, cc := range searchResp.Data {
		cards[i] = s.convertToCard(cc)
	}

	return &models.CardSearchResult{
		Cards:      cards,
		TotalCount: searchResp.TotalCount,
		HasMore:    searchResp.TotalCount > searchResp.Page*searchResp.PageSize,
	}, nil
}

// GetCard fetches a single card by id. Returns (nil, nil) when not found.
func (s *CatalogService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	reqURL := fmt.Sprintf("%s/cards/%s", s.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get card from catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	var cardResp catalogCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&cardResp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	card := s.convertToCard(cardResp.Data)
	return &card, nil
}

// Name identifies this pricing source
func (s *CatalogService) Name() string {
	return models.SourceCatalog
}

// Available reports whether the source can be queried. The catalog works
// without a key at a lower rate limit, so it is always available.
func (s *CatalogService) Available() bool {
	return true
}

// FetchPricing contributes the ungraded market price. The catalog carries no
// graded tiers.
func (s *CatalogService) FetchPricing(ctx context.Context, cardID, name, setName string) (*models.PricePoints, error) {
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, nil
	}
	if card.PricePoints.Ungraded <= 0 {
		return nil, nil
	}
	return &models.PricePoints{Ungraded: card.PricePoints.Ungraded}, nil
}

// Printing buckets tried in order of likeliest match for the ungraded
// market price
var printingBuckets = []string{"normal", "holofoil", "reverseHolofoil", "1stEditionHolofoil", "1stEditionNormal"}

func (s *CatalogService) convertToCard(cc catalogCard) models.Card {
	card := models.Card{
		ID:          cc.ID,
		Name:        cc.Name,
		SetID:       cc.Set.ID,
		SetName:     cc.Set.Name,
		Number:      cc.Number,
		Rarity:      cc.Rarity,
		Supertype:   cc.Supertype,
		Artist:      cc.Artist,
		ReleaseDate: cc.Set.ReleaseDate,
		ImageURL:    cc.Images.Small,
		ImageURLHi:  cc.Images.Large,
		PriceSource: "api",
	}
	if len(cc.Types) > 0 {
		card.CardType = cc.Types[0]
	}

	if cc.TCGPlayer != nil {
		for _, bucket := range printingBuckets {
			if p, ok := cc.TCGPlayer.Prices[bucket]; ok && p.Market > 0 {
				card.PricePoints.Ungraded = p.Market
				break
			}
		}
	}

	return card
}

func (s *CatalogService) getJSON(ctx context.Context, reqURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
