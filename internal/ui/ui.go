package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/player"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/desertthunder/bloomly/internal/shared"
)

// Tab represents the current view in the TUI.
type Tab int

const (
	SearchTab Tab = iota
	GardenTab
)

func (t Tab) String() string {
	if t == GardenTab {
		return "My Garden"
	}
	return "Search"
}

// Deps wires a [Model] to its collaborators.
type Deps struct {
	Plants    services.PlantCatalog
	Tracks    services.TrackCatalog
	Favorites garden.FavoriteStore
	User      *models.User
	Logger    *log.Logger
	NotifyTTL time.Duration
	Clock     notify.Clock
}

// nowPlaying is the TUI's [player.Output]. It has no audio device and only records what would play.
type nowPlaying struct {
	mu     sync.Mutex
	status string
}

func (o *nowPlaying) Play(_ context.Context, t models.Track) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = fmt.Sprintf("Playing: %s - %s", t.Title, t.Artist)
	return nil
}

func (o *nowPlaying) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = "Paused"
}

func (o *nowPlaying) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	tab    Tab
	user   *models.User
	logger *log.Logger
	tracks services.TrackCatalog

	notes       *notify.Center
	search      *garden.SearchView
	garden      *garden.GardenView
	player      *player.Player
	output      *nowPlaying
	toasts      chan notify.Event
	unsubscribe func()
	toast       notify.Event

	query     textinput.Model
	rename    textinput.Model
	results   list.Model
	favorites list.Model
	width     int
	height    int
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, d Deps) *Model {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts := []notify.Option{notify.WithTTL(d.NotifyTTL), notify.WithLogger(logger)}
	if d.Clock != nil {
		opts = append(opts, notify.WithClock(d.Clock))
	}
	notes := notify.NewCenter(opts...)
	output := &nowPlaying{}

	m := &Model{
		ctx:       ctx,
		tab:       SearchTab,
		user:      d.User,
		logger:    logger,
		tracks:    d.Tracks,
		notes:     notes,
		search:    garden.NewSearchView(d.Plants, d.Favorites, notes, logger),
		garden:    garden.NewGardenView(d.Favorites, notes, logger),
		player:    player.New(output, logger),
		output:    output,
		toasts:    make(chan notify.Event, 1),
		query:     newInput("Search for a plant..."),
		rename:    newInput("New name"),
		results:   newList("Results"),
		favorites: newList("Seeds I've Saved"),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.unsubscribe = notes.Subscribe(func(ev notify.Event) { offerToast(m.toasts, ev) })
	return m
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "› "
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

// offerToast delivers ev, replacing an undelivered older event.
func offerToast(ch chan notify.Event, ev notify.Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close releases the notification subscription and stops the player.
func (m *Model) Close() {
	m.unsubscribe()
	m.player.Close()
}

// Notifications exposes the toast slot, e.g. for startup messages.
func (m *Model) Notifications() *notify.Center {
	return m.notes
}

// Init loads the track list and the garden and starts listening for toasts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadTracks(), m.loadGarden(), m.waitForToast())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-12)
		m.favorites.SetSize(msg.Width-4, msg.Height-12)
		m.query.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case toastMsg:
		m.toast = notify.Event(msg)
		return m, m.waitForToast()

	case searchDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, shared.ErrEmptyQuery) {
			m.logger.Debug("search failed", "error", msg.err)
		}
		m.results.SetItems(plantItems(m.search.Visible()))
		m.results.ResetSelected()
		return m, nil

	case favoriteSavedMsg:
		if msg.err != nil {
			return m, nil
		}
		return m, m.loadGarden()

	case gardenLoadedMsg, gardenChangedMsg:
		m.syncGarden()
		return m, nil

	case tracksLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("player unavailable", "error", msg.err)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.query.Focused() {
		return m.handleQueryKeys(msg)
	}
	if _, _, editing := m.garden.Editing(); editing && m.tab == GardenTab {
		return m.handleRenameKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		if m.tab == SearchTab {
			m.tab = GardenTab
		} else {
			m.tab = SearchTab
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.tab = SearchTab
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.next):
		m.player.Next()
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.player.Prev()
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.player.TogglePlay()
		return m, nil
	case key.Matches(msg, m.keys.tracks):
		m.player.ToggleList()
		return m, nil
	}

	if m.tab == GardenTab {
		return m.handleGardenKeys(msg)
	}
	return m.handleSearchKeys(msg)
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.query.Blur()
		return m, m.submitSearch(m.query.Value())
	case tea.KeyEsc:
		m.query.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.garden.SetDraft(m.rename.Value())
		return m, m.commitRename()
	case tea.KeyEsc:
		m.garden.HandleKey(m.ctx, "esc")
		m.rename.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	m.garden.SetDraft(m.rename.Value())
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if item, ok := m.results.SelectedItem().(plantItem); ok {
			return m, m.saveFavorite(item.plant)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleGardenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, selected := m.favorites.SelectedItem().(favoriteItem)

	switch {
	case key.Matches(msg, m.keys.rename):
		if !selected {
			return m, nil
		}
		if err := m.garden.StartEdit(item.fav.ID); err != nil {
			return m, nil
		}
		_, draft, _ := m.garden.Editing()
		m.rename.SetValue(draft)
		m.rename.CursorEnd()
		return m, m.rename.Focus()
	case key.Matches(msg, m.keys.remove):
		if !selected {
			return m, nil
		}
		return m, m.removeFavorite(item.fav.ID)
	}

	var cmd tea.Cmd
	m.favorites, cmd = m.favorites.Update(msg)
	return m, cmd
}

// syncGarden rebuilds the garden list and drops rename focus once edit mode has ended.
func (m *Model) syncGarden() {
	m.favorites.SetItems(favoriteItems(m.garden.Favorites()))
	if _, _, editing := m.garden.Editing(); !editing {
		m.rename.Blur()
	}
}

func (m *Model) submitSearch(query string) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg{err: m.search.Submit(m.ctx, query)}
	}
}

func (m *Model) saveFavorite(p models.Plant) tea.Cmd {
	return func() tea.Msg {
		return favoriteSavedMsg{err: m.search.AddFavorite(m.ctx, m.user, p)}
	}
}

func (m *Model) loadGarden() tea.Cmd {
	return func() tea.Msg {
		return gardenLoadedMsg{err: m.garden.Load(m.ctx, m.user)}
	}
}

func (m *Model) commitRename() tea.Cmd {
	return func() tea.Msg {
		return gardenChangedMsg{err: m.garden.Commit(m.ctx)}
	}
}

func (m *Model) removeFavorite(id int) tea.Cmd {
	return func() tea.Msg {
		return gardenChangedMsg{err: m.garden.Remove(m.ctx, id)}
	}
}

func (m *Model) loadTracks() tea.Cmd {
	return func() tea.Msg {
		return tracksLoadedMsg{err: m.player.Load(m.ctx, m.tracks)}
	}
}

func (m *Model) waitForToast() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.toasts:
			return toastMsg(ev)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current tab.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderToast())
	b.WriteString("\n\n")

	switch m.tab {
	case GardenTab:
		b.WriteString(m.renderGarden())
	default:
		b.WriteString(m.renderSearch())
	}

	if bar := m.renderPlayer(); bar != "" {
		b.WriteString("\n\n")
		b.WriteString(bar)
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, 2)
	for _, t := range []Tab{SearchTab, GardenTab} {
		if t == m.tab {
			tabs = append(tabs, styles.active.Render(t.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(t.String()))
		}
	}

	who := "Not signed in"
	if m.user != nil {
		who = fmt.Sprintf("Signed in as %s", m.user.Greeting())
	}
	return fmt.Sprintf("%s  %s  %s", styles.title.UnsetMarginBottom().Render("Bloomly"), strings.Join(tabs, " "), styles.help.Render(who))
}

func (m *Model) renderToast() string {
	if !m.toast.Visible {
		return ""
	}
	return styles.Kind(m.toast.Kind).Render(m.toast.Message)
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.query.View())
	b.WriteString("\n\n")

	switch {
	case m.search.Loading():
		b.WriteString("Loading plants...")
	case m.search.NoResults():
		b.WriteString(garden.MsgNoPlantsView)
	case len(m.results.Items()) > 0:
		b.WriteString(fmt.Sprintf("Here's what we found for %s\n", styles.ok.Render(m.search.Query())))
		b.WriteString(m.results.View())
	default:
		b.WriteString(styles.help.Render("Press / to search the plant catalog."))
	}
	return b.String()
}

func (m *Model) renderGarden() string {
	if m.user == nil {
		return styles.warn.Render("Log in with `bloomly login` to grow your garden.")
	}
	if !m.garden.Loaded() {
		return "Loading your garden..."
	}
	if m.garden.Empty() {
		return fmt.Sprintf("%s\n%s", styles.title.Render(garden.MsgEmptyGarden), garden.MsgEmptyGardenTip)
	}

	view := m.favorites.View()
	if _, _, editing := m.garden.Editing(); editing {
		view += "\n\nRename: " + m.rename.View()
	}
	return view
}

func (m *Model) renderPlayer() string {
	snap := m.player.Snapshot()
	track, ok := snap.Current()
	if !ok || !snap.Visible() {
		return ""
	}

	state := "▶"
	if !snap.Playing {
		state = "❚❚"
	}
	line := fmt.Sprintf("%s %s - %s  (%d/%d)", state, track.Title, track.Artist, snap.Index+1, len(snap.Tracks))

	if snap.ListVisible {
		var b strings.Builder
		b.WriteString(line)
		for i, t := range snap.Tracks {
			marker := "  "
			if i == snap.Index {
				marker = "» "
			}
			b.WriteString(fmt.Sprintf("\n%s%d. %s - %s", marker, i+1, t.Title, t.Artist))
		}
		line = b.String()
	}
	return styles.bar.Render(line)
}

func (m *Model) helpKeys() []key.Binding {
	if m.query.Focused() {
		submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
		return []key.Binding{submit, m.keys.cancel}
	}
	if _, _, editing := m.garden.Editing(); editing && m.tab == GardenTab {
		commit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save name"))
		return []key.Binding{commit, m.keys.cancel}
	}

	playerKeys := []key.Binding{m.keys.toggle, m.keys.next, m.keys.prev, m.keys.tracks}
	if m.tab == GardenTab {
		return append([]key.Binding{m.keys.rename, m.keys.remove, m.keys.tab}, append(playerKeys, m.keys.quit)...)
	}
	return append([]key.Binding{m.keys.search, m.keys.enter, m.keys.tab}, append(playerKeys, m.keys.quit)...)
}
