package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
	"golang.org/x/time/rate"
)

const perenualBaseURL = "https://perenual.com/api"

type perenualResponse struct {
	Data        []models.Plant `json:"data"`
	To          int            `json:"to"`
	PerPage     int            `json:"per_page"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
	Total       int            `json:"total"`
}

// PerenualService implements [PlantCatalog] against the Perenual species API.
type PerenualService struct {
	client  jsonClient
	apiKey  string
	limiter *rate.Limiter
}

// NewPerenualService creates a Perenual client. A non-positive RateLimit disables throttling.
func NewPerenualService(cfg shared.PerenualConfig, client *http.Client) (*PerenualService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: perenual api_key", shared.ErrMissingCredentials)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &PerenualService{
		client:  newJSONClient(cfg.BaseURL, perenualBaseURL, client),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (s *PerenualService) Name() string { return "Perenual" }

// Search calls /species-list for the first page of results.
func (s *PerenualService) Search(ctx context.Context, query string) ([]models.Plant, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	if q := strings.TrimSpace(query); q != "" {
		params.Set("q", q)
	}
	params.Set("page", "1")

	var resp perenualResponse
	if err := s.client.getJSON(ctx, "/species-list", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("perenual search: %w", err)
	}

	if resp.Data == nil {
		return []models.Plant{}, nil
	}
	return resp.Data, nil
}
