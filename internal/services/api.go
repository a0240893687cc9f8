package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/bloomly/internal/shared"
)

// jsonClient performs GET requests against a JSON API rooted at baseURL.
type jsonClient struct {
	baseURL    string
	httpClient *http.Client
}

func newJSONClient(baseURL, fallback string, client *http.Client) jsonClient {
	if baseURL == "" {
		baseURL = fallback
	}
	if client == nil {
		client = http.DefaultClient
	}
	return jsonClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// endpoint joins path and query onto the base URL.
func (c jsonClient) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON fetches path and decodes the body into out.
func (c jsonClient) getJSON(ctx context.Context, path string, query url.Values, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, redactURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// redactURL drops the request URL (which may carry an API key) from transport errors.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
