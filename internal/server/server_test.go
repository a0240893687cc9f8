package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/models"
)

func TestMuxRouter(t *testing.T) {
	t.Run("Routes By Method And Path Variable", func(t *testing.T) {
		r := NewMuxRouter()
		r.HandleFunc(http.MethodPost, "/favorites/{id}/remove", func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, "removed "+Var(req, "id"))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/favorites/42/remove", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "removed 42" {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favorites/42/remove", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewMuxRouter()
		r.Use(mark("first"), mark("second"))
		r.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, req *http.Request) {
			order = append(order, "handler")
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		r := NewMuxRouter()
		r.NotFound(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "nothing here", http.StatusNotFound)
		}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "nothing here") {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging Records Status", func(t *testing.T) {
		var buf strings.Builder
		logger := log.New(&buf)

		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusSeeOther)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile", nil))

		out := buf.String()
		if !strings.Contains(out, "path=/profile") || !strings.Contains(out, "status=303") {
			t.Errorf("unexpected log line %q", out)
		}
	})

	t.Run("Recover Returns 500", func(t *testing.T) {
		logger := log.New(io.Discard)
		h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	user := &models.User{UID: "u1", Email: "ana@example.com"}
	okSignIn := func(ctx context.Context, code string) (*models.User, error) {
		if code != "good" {
			return nil, errors.New("bad code")
		}
		return user, nil
	}

	t.Run("Success", func(t *testing.T) {
		h := NewOAuthHandler("/auth/google/callback", "state123", okSignIn)
		if h.Routes()[0] != "/auth/google/callback" {
			t.Fatalf("unexpected routes %v", h.Routes())
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=state123&code=good", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() != nil || result.User.UID != "u1" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		h := NewOAuthHandler("", "expected", okSignIn)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=good", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := NewOAuthHandler("", "s", okSignIn)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("Only Once", func(t *testing.T) {
		h := NewOAuthHandler("", "s", okSignIn)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("second callback should be rejected, got %d", rec.Code)
		}
	})
}
