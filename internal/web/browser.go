package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/player"
	"github.com/desertthunder/bloomly/internal/shared"
)

// Cookie names.
const (
	BrowserCookie = "bloomly_sid"
	SessionCookie = "bloomly_session"
)

// browser is the transient UI state of one browser.
type browser struct {
	id     string
	notes  *notify.Center
	player *player.Player
	search *garden.SearchView
	garden *garden.GardenView

	playerOnce sync.Once

	mu         sync.Mutex
	oauthState string
	formError  string
	lastSeen   time.Time
}

func (b *browser) touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

// takeFormError returns and clears the pending form error.
func (b *browser) takeFormError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.formError
	b.formError = ""
	return msg
}

func (b *browser) setFormError(msg string) {
	b.mu.Lock()
	b.formError = msg
	b.mu.Unlock()
}

// takeOAuthState returns and clears the pending federated sign-in state.
func (b *browser) takeOAuthState() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.oauthState
	b.oauthState = ""
	return state
}

// browsers is the table of live browser states, keyed by the bloomly_sid cookie.
type browsers struct {
	mu    sync.Mutex
	byID  map[string]*browser
	idle  time.Duration
	max   int
	build func(id string) *browser
}

func newBrowsers(idle time.Duration, max int, build func(id string) *browser) *browsers {
	return &browsers{byID: make(map[string]*browser), idle: idle, max: max, build: build}
}

// find returns the existing browser for r without creating one.
func (t *browsers) find(r *http.Request) (*browser, bool) {
	c, err := r.Cookie(BrowserCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}

	t.mu.Lock()
	b, ok := t.byID[c.Value]
	t.mu.Unlock()
	if ok {
		b.touch(time.Now())
	}
	return b, ok
}

// lookup returns the browser for r, creating one and setting its cookie when absent.
func (t *browsers) lookup(w http.ResponseWriter, r *http.Request, secure bool) *browser {
	if b, ok := t.find(r); ok {
		return b
	}

	now := time.Now()
	t.prune(now)

	b := t.build(shared.GenerateID())
	b.touch(now)

	t.mu.Lock()
	var evicted *browser
	if t.max > 0 && len(t.byID) >= t.max {
		evicted = t.oldestLocked()
		delete(t.byID, evicted.id)
	}
	t.byID[b.id] = b
	t.mu.Unlock()

	if evicted != nil {
		evicted.player.Close()
		evicted.notes.Dismiss()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     BrowserCookie,
		Value:    b.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return b
}

// prune closes and forgets browsers idle for longer than t.idle.
func (t *browsers) prune(now time.Time) {
	if t.idle <= 0 {
		return
	}

	var stale []*browser
	t.mu.Lock()
	for id, b := range t.byID {
		b.mu.Lock()
		idle := now.Sub(b.lastSeen)
		b.mu.Unlock()
		if idle > t.idle {
			stale = append(stale, b)
			delete(t.byID, id)
		}
	}
	t.mu.Unlock()

	for _, b := range stale {
		b.player.Close()
		b.notes.Dismiss()
	}
}

// oldestLocked returns the least recently seen browser. t.mu must be held and the table non-empty.
func (t *browsers) oldestLocked() *browser {
	var oldest *browser
	var seen time.Time
	for _, b := range t.byID {
		b.mu.Lock()
		last := b.lastSeen
		b.mu.Unlock()
		if oldest == nil || last.Before(seen) {
			oldest, seen = b, last
		}
	}
	return oldest
}

// closeAll closes every player and empties the table.
func (t *browsers) closeAll() {
	t.mu.Lock()
	all := t.byID
	t.byID = make(map[string]*browser)
	t.mu.Unlock()

	for _, b := range all {
		b.player.Close()
	}
}

// len returns the number of live browsers.
func (t *browsers) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}
