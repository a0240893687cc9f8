package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/player"
	"github.com/desertthunder/bloomly/internal/repositories"
	"github.com/desertthunder/bloomly/internal/shared"
	tu "github.com/desertthunder/bloomly/internal/testing"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

type stubGoogle struct {
	err error
}

func (s stubGoogle) AuthURL(state string) string {
	return "https://consent.example/auth?state=" + state
}

func (s stubGoogle) SignIn(ctx context.Context, code string) (string, string, string, error) {
	if s.err != nil || code != "good-code" {
		return "", "", "", errors.New("exchange failed")
	}
	return "google-sub-1", "gina@example.com", "Gina", nil
}

type harness struct {
	app    *App
	srv    *httptest.Server
	client *http.Client
	clock  *notify.FakeClock
	store  *tu.MemoryFavoriteStore
	plants *tu.StubPlantCatalog
}

func setupHarness(t *testing.T, plants *tu.StubPlantCatalog, tracks *tu.StubTrackCatalog, opts ...auth.Option) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens failed: %v", err)
	}

	if plants == nil {
		plants = &tu.StubPlantCatalog{}
	}
	if tracks == nil {
		tracks = &tu.StubTrackCatalog{}
	}

	opts = append([]auth.Option{auth.WithBcryptCost(bcrypt.MinCost)}, opts...)
	h := &harness{
		clock:  notify.NewFakeClock(),
		store:  tu.NewMemoryFavoriteStore(),
		plants: plants,
	}

	app, err := New(Options{
		Plants:    plants,
		Tracks:    tracks,
		Favorites: h.store,
		Auth:      auth.NewProvider(repositories.NewAccountRepository(db), opts...),
		Tokens:    tokens,
		Clock:     h.clock,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.app = app
	h.srv = httptest.NewServer(app)
	t.Cleanup(func() {
		h.srv.Close()
		app.Close()
	})

	jar, _ := cookiejar.New(nil)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return h
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *harness) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

// browser returns the single browser state created by the harness client.
func (h *harness) browser(t *testing.T) *browser {
	t.Helper()
	h.app.browsers.mu.Lock()
	defer h.app.browsers.mu.Unlock()
	if len(h.app.browsers.byID) != 1 {
		t.Fatalf("expected one browser, got %d", len(h.app.browsers.byID))
	}
	for _, b := range h.app.browsers.byID {
		return b
	}
	return nil
}

func (h *harness) signUp(t *testing.T) {
	t.Helper()
	resp := h.post(t, "/register", url.Values{
		"name":     {"Ana"},
		"email":    {"ana@example.com"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
	})
	expectRedirect(t, resp, "/profile")
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func TestSearchPage(t *testing.T) {
	t.Run("Renders Twelve Cards", func(t *testing.T) {
		h := setupHarness(t, &tu.StubPlantCatalog{Plants: tu.MakePlants("Tulip", 15)}, nil)

		expectRedirect(t, h.post(t, "/search", url.Values{"q": {"tulip"}}), "/")
		resp, body := h.get(t, "/")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if n := strings.Count(body, "Save to My Garden"); n != 12 {
			t.Errorf("expected 12 save buttons, got %d", n)
		}
		if strings.Contains(body, "Tulip 13") {
			t.Error("results beyond the first 12 should not render")
		}
		if h.plants.Calls() != 1 {
			t.Errorf("expected one catalog call, got %d", h.plants.Calls())
		}
	})

	t.Run("No Results", func(t *testing.T) {
		h := setupHarness(t, nil, nil)

		h.post(t, "/search", url.Values{"q": {"zzz"}})
		_, body := h.get(t, "/")

		if !strings.Contains(body, "No plants found.") {
			t.Error("expected empty state")
		}
		if !strings.Contains(body, `class="notification warning"`) {
			t.Error("expected warning notification")
		}
	})

	t.Run("Blank Query Skips Catalog", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.post(t, "/search", url.Values{"q": {"  "}})
		if h.plants.Calls() != 0 {
			t.Error("blank query should not reach the catalog")
		}
	})
}

func TestGating(t *testing.T) {
	h := setupHarness(t, nil, nil)

	resp, _ := h.get(t, "/profile")
	expectRedirect(t, resp, "/login")

	resp, body := h.get(t, "/login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Welcome back to Bloomly") {
		t.Fatalf("expected login page, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "Continue with Google") {
		t.Error("google button should be hidden without credentials")
	}

	h.signUp(t)

	for _, path := range []string{"/login", "/register"} {
		resp, _ := h.get(t, path)
		expectRedirect(t, resp, "/profile")
	}

	resp, body = h.get(t, "/profile")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"Good to see you, Ana!", "ana@example.com", "Your garden is empty"} {
		if !strings.Contains(body, want) {
			t.Errorf("profile missing %q", want)
		}
	}

	expectRedirect(t, h.post(t, "/logout", nil), "/login")
	resp, _ = h.get(t, "/profile")
	expectRedirect(t, resp, "/login")
}

func TestAuthForms(t *testing.T) {
	t.Run("Bad Password", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.signUp(t)
		h.post(t, "/logout", nil)

		resp := h.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"nope"}})
		expectRedirect(t, resp, "/login")

		_, body := h.get(t, "/login")
		if !strings.Contains(body, `class="notification error"`) || !strings.Contains(body, auth.MsgSignInFailed) {
			t.Errorf("expected sign-in failure notification")
		}
	})

	t.Run("Good Password", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.signUp(t)
		h.post(t, "/logout", nil)

		resp := h.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret1"}})
		expectRedirect(t, resp, "/profile")

		_, body := h.get(t, "/profile")
		if !strings.Contains(body, auth.MsgSignInSuccess) {
			t.Error("expected sign-in success notification")
		}
	})

	t.Run("Password Mismatch", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		resp := h.post(t, "/register", url.Values{
			"name": {"Ana"}, "email": {"ana@example.com"}, "password": {"secret1"}, "confirm": {"secret2"},
		})
		expectRedirect(t, resp, "/register")

		_, body := h.get(t, "/register")
		if !strings.Contains(body, "Passwords don&#39;t match.") {
			t.Errorf("expected mismatch message in %q", body)
		}

		_, body = h.get(t, "/register")
		if strings.Contains(body, "auth-error") {
			t.Error("form error should render once")
		}
	})

	t.Run("Google", func(t *testing.T) {
		h := setupHarness(t, nil, nil, auth.WithFederated("google", stubGoogle{}))

		_, body := h.get(t, "/login")
		if !strings.Contains(body, "Continue with Google") {
			t.Fatal("expected google button")
		}

		resp := h.post(t, "/login/google", nil)
		consent, err := url.Parse(resp.Header.Get("Location"))
		if resp.StatusCode != http.StatusSeeOther || err != nil || consent.Host != "consent.example" {
			t.Fatalf("expected consent redirect, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
		}
		state := consent.Query().Get("state")

		resp, _ = h.get(t, "/auth/google/callback?state="+state+"&code=good-code")
		expectRedirect(t, resp, "/profile")

		_, body = h.get(t, "/profile")
		if !strings.Contains(body, "Good to see you, Gina!") || !strings.Contains(body, auth.MsgGoogleSuccess) {
			t.Error("expected google profile and success notification")
		}
	})

	t.Run("Google State Mismatch", func(t *testing.T) {
		h := setupHarness(t, nil, nil, auth.WithFederated("google", stubGoogle{}))
		h.post(t, "/login/google", nil)

		resp, _ := h.get(t, "/auth/google/callback?state=forged&code=good-code")
		expectRedirect(t, resp, "/login")

		resp, _ = h.get(t, "/profile")
		expectRedirect(t, resp, "/login")
	})
}

func TestNotificationSlot(t *testing.T) {
	t.Run("Renders And Expires", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.get(t, "/")
		h.browser(t).notes.Show("ok", notify.KindSuccess)

		_, body := h.get(t, "/")
		if !strings.Contains(body, `<div class="notification success">ok<button class="dismiss"`) {
			t.Errorf("expected dismissible success notification in %q", body)
		}

		h.clock.Advance(3 * time.Second)
		_, body = h.get(t, "/")
		if strings.Contains(body, `class="notification`) {
			t.Error("notification should be gone after 3s")
		}
	})

	t.Run("Dismiss", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.get(t, "/")
		h.browser(t).notes.Show("bye", notify.KindInfo)

		expectRedirect(t, h.post(t, "/notifications/dismiss", url.Values{"next": {"/login"}}), "/login")
		if _, ok := h.browser(t).notes.Current(); ok {
			t.Error("slot should be empty after dismiss")
		}
	})

	t.Run("JSON", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.get(t, "/")
		h.browser(t).notes.Show("saved", notify.KindSuccess)

		_, body := h.get(t, "/notifications")
		var p slotPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("invalid JSON %q: %v", body, err)
		}
		if !p.Visible || p.Message != "saved" || p.Kind != notify.KindSuccess {
			t.Errorf("unexpected payload %+v", p)
		}
	})

	t.Run("Websocket Push", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.get(t, "/")

		srvURL, _ := url.Parse(h.srv.URL)
		header := http.Header{}
		for _, c := range h.client.Jar.Cookies(srvURL) {
			header.Add("Cookie", c.String())
		}

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http")+"/ws/notifications", header)
		if err != nil {
			t.Fatalf("Dial failed: %v", err)
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		var first slotPayload
		if err := conn.ReadJSON(&first); err != nil || first.Visible {
			t.Fatalf("expected empty initial slot, got %+v (%v)", first, err)
		}

		h.browser(t).notes.Show("pushed", notify.KindWarning)
		var shown slotPayload
		if err := conn.ReadJSON(&shown); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		if !shown.Visible || shown.Message != "pushed" || shown.Kind != notify.KindWarning {
			t.Errorf("unexpected event %+v", shown)
		}

		h.clock.Advance(3 * time.Second)
		var cleared slotPayload
		if err := conn.ReadJSON(&cleared); err != nil || cleared.Visible {
			t.Errorf("expected cleared slot, got %+v (%v)", cleared, err)
		}
	})
}

func TestRedirectBack(t *testing.T) {
	tc := []struct {
		name string
		next string
		want string
	}{
		{name: "Local Path", next: "/ok", want: "/ok"},
		{name: "Local Path With Query", next: "/profile?tab=1", want: "/profile?tab=1"},
		{name: "Protocol Relative", next: "//evil.example/x", want: "/"},
		{name: "Backslash Host", next: `/\evil.example/x`, want: "/"},
		{name: "Double Backslash Host", next: `/\\evil.example`, want: "/"},
		{name: "Absolute URL", next: "http://evil.example/", want: "/"},
		{name: "Tab Smuggled Host", next: "/\t/evil.example", want: "/"},
		{name: "Relative Path", next: "profile", want: "/"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"next": {tt.next}}
			r := httptest.NewRequest(http.MethodPost, "/notifications/dismiss", strings.NewReader(form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			redirectBack(w, r, "/")
			if w.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.want {
				t.Errorf("next %q redirected to %q, want %q", tt.next, got, tt.want)
			}
		})
	}

	t.Run("Referer Backslash Host", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "http://example.com/player/next", nil)
		r.Header.Set("Referer", `http://example.com/\evil.example/x`)
		w := httptest.NewRecorder()

		redirectBack(w, r, "/")
		if got := w.Header().Get("Location"); got != "/" {
			t.Errorf("expected fallback, got %q", got)
		}
	})

	t.Run("Dismiss Endpoint", func(t *testing.T) {
		h := setupHarness(t, nil, nil)
		h.get(t, "/")
		expectRedirect(t, h.post(t, "/notifications/dismiss", url.Values{"next": {`/\evil.example/x`}}), "/")
	})
}

func TestCookielessRequests(t *testing.T) {
	tracks := &tu.StubTrackCatalog{Items: tu.MakeTracks(2)}
	h := setupHarness(t, nil, tracks)
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for range 5 {
		resp, err := client.Get(h.srv.URL + "/notifications")
		if err != nil {
			t.Fatalf("GET /notifications failed: %v", err)
		}
		var p slotPayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil || p.Visible {
			t.Errorf("expected empty slot, got %+v (%v)", p, err)
		}
		resp.Body.Close()
		if len(resp.Cookies()) != 0 {
			t.Error("poll should not set a browser cookie")
		}
	}

	resp, err := client.PostForm(h.srv.URL+"/notifications/dismiss", nil)
	if err != nil {
		t.Fatalf("POST /notifications/dismiss failed: %v", err)
	}
	resp.Body.Close()

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http")+"/ws/notifications", nil)
	if err == nil {
		t.Error("websocket without a browser cookie should be refused")
	}

	if n := h.app.browsers.len(); n != 0 {
		t.Errorf("expected no browser state, got %d", n)
	}
	if tracks.Calls() != 0 {
		t.Errorf("expected no track fetches, got %d", tracks.Calls())
	}

	t.Run("First Page Loads Tracks Once", func(t *testing.T) {
		h.get(t, "/")
		h.get(t, "/login")

		deadline := time.Now().Add(5 * time.Second)
		for tracks.Calls() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if tracks.Calls() != 1 {
			t.Errorf("expected one track fetch, got %d", tracks.Calls())
		}
	})
}

func TestBrowserTableCap(t *testing.T) {
	table := newBrowsers(time.Hour, 2, func(id string) *browser {
		return &browser{id: id, notes: notify.NewCenter(), player: player.New(nil, nil)}
	})

	var ids []string
	for range 3 {
		w := httptest.NewRecorder()
		b := table.lookup(w, httptest.NewRequest(http.MethodGet, "/", nil), false)
		ids = append(ids, b.id)
		time.Sleep(time.Millisecond)
	}

	if n := table.len(); n != 2 {
		t.Fatalf("expected 2 browsers, got %d", n)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: BrowserCookie, Value: ids[0]})
	if _, ok := table.find(r); ok {
		t.Error("least recently seen browser should be evicted")
	}
}

func TestGardenFlow(t *testing.T) {
	h := setupHarness(t, &tu.StubPlantCatalog{Plants: tu.MakePlants("Tulip", 3)}, nil)

	t.Run("Save Requires Login", func(t *testing.T) {
		h.post(t, "/search", url.Values{"q": {"tulip"}})
		expectRedirect(t, h.post(t, "/favorites", url.Values{"plant_id": {"1"}, "next": {"/"}}), "/")

		if h.store.Writes != 0 {
			t.Error("no write expected while signed out")
		}
		_, body := h.get(t, "/")
		if !strings.Contains(body, "Please log in to add plants to your garden.") {
			t.Error("expected login notification")
		}
	})

	h.signUp(t)
	uid := h.uid(t)

	t.Run("Save Creates Profile", func(t *testing.T) {
		h.post(t, "/favorites", url.Values{"plant_id": {"1"}})
		h.post(t, "/favorites", url.Values{"plant_id": {"2"}})

		favs, _ := h.store.Favorites(context.Background(), uid)
		if len(favs) != 2 || favs[0].ID != 1 || favs[1].ID != 2 {
			t.Fatalf("expected [1 2], got %+v", favs)
		}

		_, body := h.get(t, "/profile")
		if !strings.Contains(body, "Tulip 1") || !strings.Contains(body, "Tulip 2") {
			t.Error("garden should list saved plants")
		}
	})

	t.Run("Unknown Plant", func(t *testing.T) {
		resp := h.post(t, "/favorites", url.Values{"plant_id": {"99"}})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Rename Then Remove", func(t *testing.T) {
		resp, _ := h.get(t, "/favorites/2/edit")
		expectRedirect(t, resp, "/profile")

		_, body := h.get(t, "/profile")
		if !strings.Contains(body, `class="plant-name-input" type="text" name="name" value="Tulip 2"`) {
			t.Error("edit input should be prefilled")
		}
		if !strings.Contains(body, `action="/favorites/2/rename" class="rename-form" id="rename-form"`) {
			t.Error("rename form should be addressable for blur commit")
		}
		if !strings.Contains(body, `action="/favorites/2/cancel" class="inline" id="cancel-form"`) {
			t.Error("cancel form should be addressable for escape")
		}

		expectRedirect(t, h.post(t, "/favorites/2/rename", url.Values{"name": {"Sunny"}}), "/profile")
		favs, _ := h.store.Favorites(context.Background(), uid)
		if favs[1].CustomName != "Sunny" {
			t.Errorf("expected rename, got %+v", favs)
		}

		expectRedirect(t, h.post(t, "/favorites/2/remove", nil), "/profile")
		favs, _ = h.store.Favorites(context.Background(), uid)
		if len(favs) != 1 || favs[0].ID != 1 || favs[0].CustomName != "Tulip 1" {
			t.Errorf("expected [Tulip 1], got %+v", favs)
		}

		_, body = h.get(t, "/profile")
		if !strings.Contains(body, garden.MsgRemoved) {
			t.Error("expected removal notification")
		}
	})

	t.Run("Cancel Edit", func(t *testing.T) {
		h.get(t, "/favorites/1/edit")
		expectRedirect(t, h.post(t, "/favorites/1/cancel", nil), "/profile")
		if _, _, editing := h.browser(t).garden.Editing(); editing {
			t.Error("cancel should leave edit mode")
		}
	})
}

// uid resolves the signed-in user from the harness cookie jar.
func (h *harness) uid(t *testing.T) string {
	t.Helper()
	srvURL, _ := url.Parse(h.srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range h.client.Jar.Cookies(srvURL) {
		req.AddCookie(c)
	}
	user := h.app.currentUser(req)
	if user == nil {
		t.Fatal("expected a signed-in user")
	}
	return user.UID
}

func TestPlayerBar(t *testing.T) {
	h := setupHarness(t, nil, &tu.StubTrackCatalog{Items: tu.MakeTracks(3)})
	h.get(t, "/")
	b := h.browser(t)

	deadline := time.Now().Add(5 * time.Second)
	for b.player.Snapshot().State == player.StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, body := h.get(t, "/")
	if !strings.Contains(body, `<audio id="player-audio" autoplay src="https://audio.example/t0.mp3">`) {
		t.Fatalf("expected autoplaying first track in %q", body)
	}

	expectRedirect(t, h.post(t, "/player/next", url.Values{"next": {"/"}}), "/")
	if got := b.player.Snapshot().Index; got != 1 {
		t.Errorf("expected index 1, got %d", got)
	}

	h.post(t, "/player/toggle", url.Values{"next": {"/"}})
	_, body = h.get(t, "/")
	if strings.Contains(body, "<audio") {
		t.Error("paused player should not render audio")
	}

	h.post(t, "/player/list", url.Values{"next": {"/"}})
	_, body = h.get(t, "/")
	if !strings.Contains(body, `action="/player/select/2"`) {
		t.Error("expected track list")
	}

	h.post(t, "/player/select/2", url.Values{"next": {"/"}})
	snap := b.player.Snapshot()
	if snap.Index != 2 || !snap.Playing {
		t.Errorf("expected track 2 playing, got %+v", snap)
	}

	h.post(t, "/player/ended", url.Values{"next": {"/"}})
	if got := b.player.Snapshot().Index; got != 0 {
		t.Errorf("ended should wrap to 0, got %d", got)
	}

	if resp := h.post(t, "/player/select/7", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range select, got %d", resp.StatusCode)
	}
	if resp := h.post(t, "/player/shuffle", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown action, got %d", resp.StatusCode)
	}
}

func TestPlayerHiddenOnFailure(t *testing.T) {
	h := setupHarness(t, nil, &tu.StubTrackCatalog{Err: shared.ErrServiceUnavailable})
	h.get(t, "/")
	b := h.browser(t)

	deadline := time.Now().Add(5 * time.Second)
	for b.player.Snapshot().State == player.StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, body := h.get(t, "/")
	if strings.Contains(body, "music-player") {
		t.Error("player should render nothing after a failed fetch")
	}
	if b.player.Snapshot().State != player.StateError {
		t.Errorf("expected error state, got %v", b.player.Snapshot().State)
	}
}

func TestStatic(t *testing.T) {
	h := setupHarness(t, nil, nil)
	resp, body := h.get(t, "/static/app.js")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "/ws/notifications") {
		t.Errorf("unexpected static response %d", resp.StatusCode)
	}

	t.Run("Rename Edit Mode Hooks", func(t *testing.T) {
		for _, hook := range []string{
			`getElementById("rename-form")`,
			`getElementById("cancel-form")`,
			`addEventListener("blur"`,
			`e.key === "Escape"`,
			"requestSubmit()",
		} {
			if !strings.Contains(body, hook) {
				t.Errorf("app.js missing %s", hook)
			}
		}
	})
}
