package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/player"
	"github.com/desertthunder/bloomly/internal/server"
	"github.com/desertthunder/bloomly/internal/shared"
)

const defaultPlantImage = "/static/default-plant.svg"

// pageData is the model every template renders from.
type pageData struct {
	Title        string
	Path         string
	User         *models.User
	Notification *notify.Notification
	Player       playerView
	Search       searchView
	Garden       gardenView
	Google       bool
	FormError    string
}

type searchView struct {
	Query     string
	Plants    []models.Plant
	NoResults bool
	Loading   bool
}

type gardenView struct {
	Favorites []models.FavoritePlant
	Loaded    bool
	Editing   bool
	EditID    int
	Draft     string
}

type playerView struct {
	player.Snapshot
	Ready bool
	Track models.Track
	Path  string
}

func plantImage(p models.Plant) string {
	return shared.FirstNonEmpty(p.ImageURL(), defaultPlantImage)
}

// currentUser returns the identity in the session cookie, or nil.
func (a *App) currentUser(r *http.Request) *models.User {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	user, err := a.opts.Tokens.Parse(c.Value)
	if err != nil {
		a.logger.Debug("ignoring session cookie", "error", err)
		return nil
	}
	return user
}

func (a *App) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := a.opts.Tokens.Issue(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.opts.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *App) endSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) browser(w http.ResponseWriter, r *http.Request) *browser {
	return a.browsers.lookup(w, r, a.opts.SecureCookies)
}

func (a *App) page(r *http.Request, b *browser, user *models.User, title string) pageData {
	a.startPlayer(b)

	data := pageData{
		Title:  title,
		Path:   r.URL.Path,
		User:   user,
		Google: a.opts.Auth.Federated("google"),
		Search: searchView{
			Query:     b.search.Query(),
			Plants:    b.search.Visible(),
			NoResults: b.search.NoResults(),
			Loading:   b.search.Loading(),
		},
	}

	if n, ok := b.notes.Current(); ok {
		data.Notification = &n
	}

	snap := b.player.Snapshot()
	data.Player = playerView{Snapshot: snap, Path: r.URL.Path}
	if t, ok := snap.Current(); ok && snap.Visible() {
		data.Player.Ready = true
		data.Player.Track = t
	}

	id, draft, editing := b.garden.Editing()
	data.Garden = gardenView{
		Favorites: b.garden.Favorites(),
		Loaded:    b.garden.Loaded(),
		Editing:   editing,
		EditID:    id,
		Draft:     draft,
	}
	return data
}

func (a *App) render(w http.ResponseWriter, name string, data pageData) {
	t, ok := a.pages[name]
	if !ok {
		http.Error(w, "Unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// redirectBack sends a 303 to the form's "next" path, the referring page, or fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if next, ok := localPath(r.FormValue("next")); ok {
		target = next
	} else if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
		if path, ok := localPath(ref.Path); ok {
			target = path
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// localPath accepts p only when browsers would resolve it against this origin.
//
// Backslashes count as slashes, so "/\host" is rejected like "//host".
func localPath(p string) (string, bool) {
	if !strings.HasPrefix(p, "/") || strings.ContainsFunc(p, unicode.IsControl) {
		return "", false
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(p, "//") {
		return "", false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return p, true
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	b := a.browser(w, r)
	a.render(w, "home", a.page(r, b, a.currentUser(r), "Home"))
}

func (a *App) search(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	if err := b.search.Submit(r.Context(), r.FormValue("q")); err != nil && !errors.Is(err, shared.ErrEmptyQuery) {
		a.logger.Debug("search failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) loginPage(w http.ResponseWriter, r *http.Request) {
	user := a.currentUser(r)
	if user != nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	b := a.browser(w, r)
	a.render(w, "login", a.page(r, b, nil, "Login"))
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	user, err := a.opts.Auth.SignInWithPassword(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err == nil {
		err = a.startSession(w, user)
	}
	if err != nil {
		a.logger.Info("sign-in rejected", "error", err)
		b.notes.Show(auth.MsgSignInFailed, notify.KindError)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	b.notes.Show(auth.MsgSignInSuccess, notify.KindSuccess)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) googleStart(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	state := shared.GenerateID()
	consent, err := a.opts.Auth.FederatedURL("google", state)
	if err != nil {
		a.logger.Warn("google sign-in unavailable", "error", err)
		b.notes.Show(auth.MsgGoogleFailed, notify.KindError)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	b.mu.Lock()
	b.oauthState = state
	b.mu.Unlock()

	http.Redirect(w, r, consent, http.StatusSeeOther)
}

func (a *App) googleCallback(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)
	q := r.URL.Query()

	fail := func(reason string, kv ...any) {
		a.logger.Warn(reason, kv...)
		b.notes.Show(auth.MsgGoogleFailed, notify.KindError)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}

	if state := b.takeOAuthState(); state == "" || state != q.Get("state") {
		fail("google callback state mismatch")
		return
	}
	if q.Get("code") == "" {
		fail("google callback without code", "error", q.Get("error"))
		return
	}

	user, err := a.opts.Auth.SignInWithFederated(r.Context(), "google", q.Get("code"))
	if err == nil {
		err = a.startSession(w, user)
	}
	if err != nil {
		fail("google sign-in failed", "error", err)
		return
	}

	b.notes.Show(auth.MsgGoogleSuccess, notify.KindSuccess)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) registerPage(w http.ResponseWriter, r *http.Request) {
	if a.currentUser(r) != nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	b := a.browser(w, r)
	data := a.page(r, b, nil, "Sign up")
	data.FormError = b.takeFormError()
	a.render(w, "register", data)
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	user, err := a.opts.Auth.Register(r.Context(),
		r.FormValue("name"),
		r.FormValue("email"),
		r.FormValue("password"),
		r.FormValue("confirm"),
	)
	if err == nil {
		err = a.startSession(w, user)
	}
	if err != nil {
		a.logger.Info("sign-up rejected", "error", err)
		b.setFormError(signUpMessage(err))
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func signUpMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrPasswordMismatch):
		return auth.MsgPasswordMismatch
	case errors.Is(err, shared.ErrWeakPassword):
		return auth.MsgWeakPassword
	default:
		return auth.MsgSignUpFailed
	}
}

func (a *App) profile(w http.ResponseWriter, r *http.Request) {
	user := a.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	b := a.browser(w, r)

	if err := b.garden.Load(r.Context(), user); err != nil {
		a.logger.Warn("garden unavailable", "uid", user.UID, "error", err)
	}
	a.render(w, "profile", a.page(r, b, user, "Profile"))
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	if err := a.opts.Auth.SignOut(r.Context()); err != nil {
		b.notes.Show(auth.MsgLogoutFailed, notify.KindError)
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	a.endSession(w)
	b.garden.Load(r.Context(), nil)
	b.notes.Show(auth.MsgLogoutSuccess, notify.KindSuccess)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) addFavorite(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	id, err := strconv.Atoi(r.FormValue("plant_id"))
	plant, ok := b.search.Find(id)
	if err != nil || !ok {
		http.Error(w, "Unknown plant", http.StatusNotFound)
		return
	}

	b.search.AddFavorite(r.Context(), a.currentUser(r), plant)
	redirectBack(w, r, "/")
}

// gardenFor returns b's garden view loaded for the signed-in user, or nil after redirecting to /login.
func (a *App) gardenFor(w http.ResponseWriter, r *http.Request) (*garden.GardenView, int, bool) {
	user := a.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, 0, false
	}
	b := a.browser(w, r)

	id, err := strconv.Atoi(server.Var(r, "id"))
	if err != nil {
		http.Error(w, "Invalid plant id", http.StatusBadRequest)
		return nil, 0, false
	}

	if b.garden.Owner() != user.UID {
		if err := b.garden.Load(r.Context(), user); err != nil {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return nil, 0, false
		}
	}
	return b.garden, id, true
}

func (a *App) editFavorite(w http.ResponseWriter, r *http.Request) {
	g, id, ok := a.gardenFor(w, r)
	if !ok {
		return
	}
	if err := g.StartEdit(id); err != nil {
		a.logger.Debug("cannot edit favorite", "plant", id, "error", err)
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) renameFavorite(w http.ResponseWriter, r *http.Request) {
	g, id, ok := a.gardenFor(w, r)
	if !ok {
		return
	}
	g.Rename(r.Context(), id, r.FormValue("name"))
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) cancelEdit(w http.ResponseWriter, r *http.Request) {
	g, _, ok := a.gardenFor(w, r)
	if !ok {
		return
	}
	g.Cancel()
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) removeFavorite(w http.ResponseWriter, r *http.Request) {
	g, id, ok := a.gardenFor(w, r)
	if !ok {
		return
	}
	g.Remove(r.Context(), id)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (a *App) playerAction(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	switch server.Var(r, "action") {
	case "next":
		b.player.Next()
	case "prev":
		b.player.Prev()
	case "toggle":
		b.player.TogglePlay()
	case "list":
		b.player.ToggleList()
	case "ended":
		b.player.TrackEnded()
	default:
		http.NotFound(w, r)
		return
	}
	redirectBack(w, r, "/")
}

func (a *App) playerSelect(w http.ResponseWriter, r *http.Request) {
	b := a.browser(w, r)

	i, err := strconv.Atoi(server.Var(r, "index"))
	if err == nil {
		err = b.player.SelectTrack(i)
	}
	if err != nil {
		http.Error(w, "Invalid track", http.StatusBadRequest)
		return
	}
	redirectBack(w, r, "/")
}

func (a *App) dismiss(w http.ResponseWriter, r *http.Request) {
	if b, ok := a.browsers.find(r); ok {
		b.notes.Dismiss()
	}
	redirectBack(w, r, "/")
}
