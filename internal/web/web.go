package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/player"
	"github.com/desertthunder/bloomly/internal/server"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/gorilla/websocket"
)

//go:embed templates/*.html static/*
var assets embed.FS

const (
	// DefaultIdle is how long an unused browser state is kept.
	DefaultIdle = 24 * time.Hour
	// DefaultMaxBrowsers caps the browser table; the least recently seen state is evicted first.
	DefaultMaxBrowsers = 10000
)

// Options wires an [App] to its collaborators.
type Options struct {
	Plants    services.PlantCatalog
	Tracks    services.TrackCatalog
	Favorites garden.FavoriteStore
	Auth      *auth.Provider
	Tokens    *auth.Tokens
	Logger    *log.Logger

	// NotifyTTL is the notification slot lifetime. Zero uses [notify.DefaultTTL].
	NotifyTTL time.Duration
	// Clock drives notification expiry. Nil uses the wall clock.
	Clock notify.Clock
	// Idle is how long an unused browser state survives. Zero uses [DefaultIdle].
	Idle time.Duration
	// MaxBrowsers caps live browser states. Zero uses [DefaultMaxBrowsers].
	MaxBrowsers int
	// SecureCookies marks cookies Secure, for deployments behind TLS.
	SecureCookies bool
}

// App is the browser front end. It implements [http.Handler].
type App struct {
	opts     Options
	logger   *log.Logger
	pages    map[string]*template.Template
	browsers *browsers
	router   *server.MuxRouter
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// New validates opts, parses the templates and registers the routes.
func New(opts Options) (*App, error) {
	if opts.Plants == nil || opts.Tracks == nil || opts.Favorites == nil {
		return nil, fmt.Errorf("web: catalogs and favorite store are required")
	}
	if opts.Auth == nil || opts.Tokens == nil {
		return nil, fmt.Errorf("web: identity provider and token issuer are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = notify.RealClock
	}
	if opts.Idle <= 0 {
		opts.Idle = DefaultIdle
	}
	if opts.MaxBrowsers <= 0 {
		opts.MaxBrowsers = DefaultMaxBrowsers
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		opts:   opts,
		logger: opts.Logger,
		pages:  pages,
		ctx:    ctx,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	a.browsers = newBrowsers(opts.Idle, opts.MaxBrowsers, a.newBrowser)
	a.router = a.routes()
	return a, nil
}

// newBrowser builds fresh per-browser views. The track fetch waits for the first page render.
func (a *App) newBrowser(id string) *browser {
	logger := a.logger.With("browser", id[:8])
	notes := notify.NewCenter(
		notify.WithTTL(a.opts.NotifyTTL),
		notify.WithClock(a.opts.Clock),
		notify.WithLogger(logger),
	)
	return &browser{
		id:     id,
		notes:  notes,
		player: player.New(player.Silent, logger),
		search: garden.NewSearchView(a.opts.Plants, a.opts.Favorites, notes, logger),
		garden: garden.NewGardenView(a.opts.Favorites, notes, logger),
	}
}

// startPlayer kicks off b's one-time track fetch.
func (a *App) startPlayer(b *browser) {
	b.playerOnce.Do(func() {
		go func() {
			if err := b.player.Load(a.ctx, a.opts.Tracks); err != nil {
				a.logger.Warn("player unavailable", "browser", b.id[:8], "error", err)
			}
		}()
	})
}

func (a *App) routes() *server.MuxRouter {
	r := server.NewMuxRouter()
	r.Use(server.Recover(a.logger), server.Logging(a.logger))

	r.HandleFunc(http.MethodGet, "/", a.home)
	r.HandleFunc(http.MethodPost, "/search", a.search)

	r.HandleFunc(http.MethodGet, "/login", a.loginPage)
	r.HandleFunc(http.MethodPost, "/login", a.login)
	r.HandleFunc(http.MethodPost, "/login/google", a.googleStart)
	r.HandleFunc(http.MethodGet, "/auth/google/callback", a.googleCallback)
	r.HandleFunc(http.MethodGet, "/register", a.registerPage)
	r.HandleFunc(http.MethodPost, "/register", a.register)
	r.HandleFunc(http.MethodGet, "/profile", a.profile)
	r.HandleFunc(http.MethodPost, "/logout", a.logout)

	r.HandleFunc(http.MethodPost, "/favorites", a.addFavorite)
	r.HandleFunc(http.MethodGet, "/favorites/{id:[0-9]+}/edit", a.editFavorite)
	r.HandleFunc(http.MethodPost, "/favorites/{id:[0-9]+}/rename", a.renameFavorite)
	r.HandleFunc(http.MethodPost, "/favorites/{id:[0-9]+}/cancel", a.cancelEdit)
	r.HandleFunc(http.MethodPost, "/favorites/{id:[0-9]+}/remove", a.removeFavorite)

	r.HandleFunc(http.MethodPost, "/player/select/{index:[0-9]+}", a.playerSelect)
	r.HandleFunc(http.MethodPost, "/player/{action}", a.playerAction)

	r.HandleFunc(http.MethodGet, "/notifications", a.notification)
	r.HandleFunc(http.MethodPost, "/notifications/dismiss", a.dismiss)
	r.HandleFunc(http.MethodGet, "/ws/notifications", a.notificationSocket)

	r.Handle(http.MethodGet, "/static/{file}", http.FileServerFS(assets))
	return r
}

// ServeHTTP implements [http.Handler].
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Close stops every player and ends websocket streams.
func (a *App) Close() {
	a.cancel()
	a.browsers.closeAll()
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"plantImage": plantImage,
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "login", "register", "profile"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
