package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/bloomly/internal/shared"
	tu "github.com/desertthunder/bloomly/internal/testing"
)

func TestJSONClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := newJSONClient("http://example.com/", "http://fallback", customClient)

			if c.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL 'http://example.com', got %s", c.baseURL)
			}
			if c.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL and Nil Client", func(t *testing.T) {
			c := newJSONClient("", "http://fallback", nil)

			if c.baseURL != "http://fallback" {
				t.Errorf("expected fallback baseURL, got %s", c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("getJSON", func(t *testing.T) {
		t.Run("Decodes Body and Sends Query", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Query().Get("q") != "fern" {
					t.Errorf("expected q=fern, got %s", r.URL.RawQuery)
				}
				if r.Header.Get("X-Test") != "yes" {
					t.Errorf("expected custom header to be forwarded")
				}
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer server.Close()

			c := newJSONClient(server.URL, "", nil)
			var out map[string]string
			err := c.getJSON(context.Background(), "/test", url.Values{"q": {"fern"}}, http.Header{"X-Test": {"yes"}}, &out)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out["status"] != "success" {
				t.Errorf("unexpected body %v", out)
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			c := newJSONClient(server.URL, "", nil)
			var out any
			err := c.getJSON(context.Background(), "/test", nil, nil, &out)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "429") {
				t.Errorf("expected status in error, got %v", err)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			c := newJSONClient(server.URL, "", nil)
			var out any
			err := c.getJSON(context.Background(), "/test", nil, nil, &out)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			c := newJSONClient("http://example.com", "", nil)
			var out any
			err := c.getJSON(context.Background(), "/test\x00invalid", nil, nil, &out)

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request Hides URL", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			c := newJSONClient("http://example.com", "", client)
			var out any
			err := c.getJSON(context.Background(), "/test", url.Values{"key": {"secret-key"}}, nil, &out)

			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Fatalf("expected ErrServiceUnavailable, got %v", err)
			}
			if strings.Contains(err.Error(), "secret-key") {
				t.Errorf("error leaked the request URL: %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			c := newJSONClient("http://example.com", "", client)
			var out any
			err := c.getJSON(context.Background(), "/test", nil, nil, &out)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			c := newJSONClient(server.URL, "", nil)
			var out any
			if err := c.getJSON(ctx, "/test", nil, nil, &out); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable for canceled context, got %v", err)
			}
		})
	})
}
