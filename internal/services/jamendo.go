package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

const (
	jamendoBaseURL     = "https://api.jamendo.com/v3.0"
	jamendoDefaultTags = "nature"
	jamendoDefaultSize = 20
	jamendoAudioFormat = "mp31"
)

type jamendoTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	Audio      string `json:"audio"`
}

type jamendoResponse struct {
	Headers struct {
		Status       string `json:"status"`
		Code         int    `json:"code"`
		ErrorMessage string `json:"error_message"`
		ResultsCount int    `json:"results_count"`
	} `json:"headers"`
	Results []jamendoTrack `json:"results"`
}

// JamendoService implements [TrackCatalog] against the Jamendo v3 API.
type JamendoService struct {
	client      jsonClient
	clientID    string
	tags        string
	limit       int
	audioFormat string
}

// NewJamendoService creates a Jamendo client, filling unset options with the ambient defaults.
func NewJamendoService(cfg shared.JamendoConfig, client *http.Client) (*JamendoService, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: jamendo client_id", shared.ErrMissingCredentials)
	}

	s := &JamendoService{
		client:      newJSONClient(cfg.BaseURL, jamendoBaseURL, client),
		clientID:    cfg.ClientID,
		tags:        shared.FirstNonEmpty(cfg.Tags, jamendoDefaultTags),
		limit:       cfg.Limit,
		audioFormat: shared.FirstNonEmpty(cfg.AudioFormat, jamendoAudioFormat),
	}
	if s.limit <= 0 {
		s.limit = jamendoDefaultSize
	}
	return s, nil
}

func (s *JamendoService) Name() string { return "Jamendo" }

// Tracks fetches one page of tracks tagged with the configured tags.
func (s *JamendoService) Tracks(ctx context.Context) ([]models.Track, error) {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(s.limit))
	params.Set("tags", s.tags)
	params.Set("audioformat", s.audioFormat)

	var resp jamendoResponse
	if err := s.client.getJSON(ctx, "/tracks/", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("jamendo tracks: %w", err)
	}

	// Jamendo reports bad client ids with a 200 and a failed header.
	if resp.Headers.Status == "failed" {
		return nil, fmt.Errorf("%w: jamendo: %s", shared.ErrAPIRequest, resp.Headers.ErrorMessage)
	}

	tracks := make([]models.Track, 0, len(resp.Results))
	for _, t := range resp.Results {
		tracks = append(tracks, models.Track{
			ID:       t.ID,
			Title:    t.Name,
			Artist:   t.ArtistName,
			AudioURL: t.Audio,
		})
	}
	return tracks, nil
}
