package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/bloomly/internal/shared"
)

func TestPerenualService(t *testing.T) {
	t.Run("NewPerenualService", func(t *testing.T) {
		t.Run("Missing API Key", func(t *testing.T) {
			_, err := NewPerenualService(shared.PerenualConfig{}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Base URL", func(t *testing.T) {
			srv, err := NewPerenualService(shared.PerenualConfig{APIKey: "k"}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.client.baseURL != perenualBaseURL {
				t.Errorf("expected default base URL, got %s", srv.client.baseURL)
			}
			if srv.Name() != "Perenual" {
				t.Errorf("expected name Perenual, got %s", srv.Name())
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Builds Species List Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/species-list" {
					t.Errorf("expected /species-list, got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("key") != "test-key" || q.Get("q") != "tulip" || q.Get("page") != "1" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				fmt.Fprint(w, `{"data":[{"id":1,"common_name":"Tulip","scientific_name":["Tulipa"],"default_image":{"medium_url":"m.jpg"}},{"id":2,"common_name":"Wild Tulip","scientific_name":["Tulipa sylvestris"],"default_image":null}],"total":2}`)
			}))
			defer server.Close()

			srv, _ := NewPerenualService(shared.PerenualConfig{APIKey: "test-key", BaseURL: server.URL}, nil)
			plants, err := srv.Search(context.Background(), "  tulip ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(plants) != 2 {
				t.Fatalf("expected 2 plants, got %d", len(plants))
			}
			if plants[0].ImageURL() != "m.jpg" || plants[1].DefaultImage != nil {
				t.Errorf("unexpected images: %+v", plants)
			}
		})

		t.Run("Empty Query Omits q", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Has("q") {
					t.Errorf("expected no q parameter, got %s", r.URL.RawQuery)
				}
				fmt.Fprint(w, `{"data":[]}`)
			}))
			defer server.Close()

			srv, _ := NewPerenualService(shared.PerenualConfig{APIKey: "k", BaseURL: server.URL}, nil)
			if _, err := srv.Search(context.Background(), ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Missing Data Is Empty", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			}))
			defer server.Close()

			srv, _ := NewPerenualService(shared.PerenualConfig{APIKey: "k", BaseURL: server.URL}, nil)
			plants, err := srv.Search(context.Background(), "x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if plants == nil || len(plants) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", plants)
			}
		})

		t.Run("Non-OK Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			srv, _ := NewPerenualService(shared.PerenualConfig{APIKey: "k", BaseURL: server.URL}, nil)
			_, err := srv.Search(context.Background(), "x")
			if shared.Classify(err) != shared.ClassNetwork {
				t.Errorf("expected network class, got %v (%v)", shared.Classify(err), err)
			}
			if !strings.Contains(err.Error(), "perenual search") {
				t.Errorf("expected wrapped error, got %v", err)
			}
		})

		t.Run("Rate Limiter Waits", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				fmt.Fprint(w, `{"data":[]}`)
			}))
			defer server.Close()

			srv, _ := NewPerenualService(shared.PerenualConfig{APIKey: "k", BaseURL: server.URL, RateLimit: 0.001}, nil)
			if _, err := srv.Search(context.Background(), "a"); err != nil {
				t.Fatalf("first search failed: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := srv.Search(ctx, "b")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected throttled search to fail with ErrServiceUnavailable, got %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected 1 request to reach the server, got %d", calls.Load())
			}
		})
	})
}
