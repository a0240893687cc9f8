// package garden implements the search and garden views
package garden

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/desertthunder/bloomly/internal/shared"
)

// MaxResults caps how many search results are rendered.
const MaxResults = 12

// User-facing messages.
const (
	MsgNoPlantsFound  = "No plants found for this search."
	MsgNoPlantsView   = "No plants found."
	MsgSearchFailed   = "Could not load plants. Try again later."
	MsgLoginToSave    = "Please log in to add plants to your garden."
	MsgSaveFailed     = "Could not save this plant. Try again later."
	MsgLoadFailed     = "Unable to load your garden."
	MsgRenamed        = "Plant name updated!"
	MsgRenameFailed   = "Failed to update plant name."
	MsgRemoved        = "Plant removed from your garden!"
	MsgRemoveFailed   = "Failed to remove the plant."
	MsgEmptyGarden    = "Your garden is empty"
	MsgEmptyGardenTip = "Start exploring and adding plants to grow your Bloomly garden."
)

// SavedMessage is the success notification for adding plant.
func SavedMessage(p models.Plant) string {
	return fmt.Sprintf("%s added to your garden!", p.DisplayName())
}

// FavoriteStore is the profile storage the views write through.
type FavoriteStore interface {
	Favorites(ctx context.Context, uid string) ([]models.FavoritePlant, error)
	AddFavorite(ctx context.Context, uid string, fav models.FavoritePlant) error
	SetFavorites(ctx context.Context, uid string, favs []models.FavoritePlant) error
}

func discardLogger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

// SearchView is the state of the plant search page. Safe for concurrent use.
type SearchView struct {
	catalog  services.PlantCatalog
	store    FavoriteStore
	notifier notify.Notifier
	logger   *log.Logger

	mu       sync.Mutex
	gen      uint64
	query    string
	results  []models.Plant
	searched bool
	loading  bool
}

// NewSearchView creates an empty search view.
func NewSearchView(catalog services.PlantCatalog, store FavoriteStore, notifier notify.Notifier, logger *log.Logger) *SearchView {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &SearchView{catalog: catalog, store: store, notifier: notifier, logger: discardLogger(logger)}
}

// Submit runs a search. A blank query is rejected without a remote call.
//
// The result replaces the previous list unless a newer Submit started meanwhile.
func (v *SearchView) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return shared.ErrEmptyQuery
	}

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	plants, err := v.catalog.Search(ctx, query)

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		v.logger.Debug("dropping stale search result", "query", query)
		return nil
	}
	v.loading = false
	v.query = query
	v.searched = true
	if err != nil {
		v.results = nil
		v.mu.Unlock()

		v.logger.Warn("plant search failed", "query", query, "error", err)
		v.notifier.Show(MsgSearchFailed, notify.KindError)
		return fmt.Errorf("search %q: %w", query, err)
	}
	v.results = plants
	v.mu.Unlock()

	if len(plants) == 0 {
		v.notifier.Show(MsgNoPlantsFound, notify.KindWarning)
	}
	return nil
}

// Query returns the last applied query.
func (v *SearchView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Loading reports whether a search is in flight.
func (v *SearchView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Results returns every plant the last search returned.
func (v *SearchView) Results() []models.Plant {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Plant(nil), v.results...)
}

// Visible returns at most [MaxResults] plants for rendering.
func (v *SearchView) Visible() []models.Plant {
	results := v.Results()
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// NoResults reports whether the last search came back empty.
func (v *SearchView) NoResults() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searched && len(v.results) == 0
}

// Find returns a plant from the current results by catalog id.
func (v *SearchView) Find(id int) (models.Plant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.results {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plant{}, false
}

// AddFavorite saves plant to user's garden, creating the profile on first save.
func (v *SearchView) AddFavorite(ctx context.Context, user *models.User, plant models.Plant) error {
	if user == nil {
		v.notifier.Show(MsgLoginToSave, notify.KindError)
		return shared.ErrNotAuthenticated
	}

	if err := v.store.AddFavorite(ctx, user.UID, models.NewFavorite(plant)); err != nil {
		v.logger.Error("failed to save favorite", "uid", user.UID, "plant", plant.ID, "error", err)
		v.notifier.Show(MsgSaveFailed, notify.KindError)
		return err
	}

	v.logger.Info("favorite saved", "uid", user.UID, "plant", plant.ID)
	v.notifier.Show(SavedMessage(plant), notify.KindSuccess)
	return nil
}

// GardenView is the state of the favorites list. Safe for concurrent use.
type GardenView struct {
	store    FavoriteStore
	notifier notify.Notifier
	logger   *log.Logger

	mu        sync.Mutex
	uid       string
	favorites []models.FavoritePlant
	loaded    bool
	editing   bool
	editID    int
	draft     string
}

// NewGardenView creates a garden view with no user loaded.
func NewGardenView(store FavoriteStore, notifier notify.Notifier, logger *log.Logger) *GardenView {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &GardenView{store: store, notifier: notifier, logger: discardLogger(logger)}
}

// Load reads the user's favorites. A nil user empties the view without a read.
func (v *GardenView) Load(ctx context.Context, user *models.User) error {
	if user == nil {
		v.mu.Lock()
		v.uid, v.favorites, v.loaded, v.editing = "", nil, true, false
		v.mu.Unlock()
		return nil
	}

	favs, err := v.store.Favorites(ctx, user.UID)
	if err != nil {
		v.logger.Error("failed to load garden", "uid", user.UID, "error", err)
		v.notifier.Show(MsgLoadFailed, notify.KindError)

		v.mu.Lock()
		v.uid, v.favorites, v.loaded = user.UID, nil, true
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.uid, v.favorites, v.loaded = user.UID, favs, true
	v.mu.Unlock()
	return nil
}

// Owner returns the uid of the loaded garden, or "" when signed out.
func (v *GardenView) Owner() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.uid
}

// Loaded reports whether Load has completed at least once.
func (v *GardenView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Favorites returns the local copy of the garden.
func (v *GardenView) Favorites() []models.FavoritePlant {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.FavoritePlant(nil), v.favorites...)
}

// Empty reports whether the garden has no plants.
func (v *GardenView) Empty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.favorites) == 0
}

// Editing returns the plant being renamed and the current draft.
func (v *GardenView) Editing() (id int, draft string, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editID, v.draft, v.editing
}

// StartEdit enters edit mode for id with the draft set to its display name.
func (v *GardenView) StartEdit(id int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := models.IndexOf(v.favorites, id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", shared.ErrFavoriteNotFound, id)
	}
	v.editing = true
	v.editID = id
	v.draft = shared.FirstNonEmpty(v.favorites[idx].CustomName, v.favorites[idx].CommonName)
	return nil
}

// SetDraft replaces the edit text.
func (v *GardenView) SetDraft(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.editing {
		v.draft = text
	}
}

// Commit renames the edited plant to the draft. Used for Enter and for losing focus.
func (v *GardenView) Commit(ctx context.Context) error {
	v.mu.Lock()
	id, draft, editing := v.editID, v.draft, v.editing
	v.mu.Unlock()

	if !editing {
		return nil
	}
	return v.Rename(ctx, id, draft)
}

// Cancel leaves edit mode without writing.
func (v *GardenView) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing, v.editID, v.draft = false, 0, ""
}

// HandleKey maps "enter" to [GardenView.Commit] and "esc" to [GardenView.Cancel].
func (v *GardenView) HandleKey(ctx context.Context, key string) error {
	switch key {
	case "enter":
		return v.Commit(ctx)
	case "esc", "escape":
		v.Cancel()
	}
	return nil
}

// Rename writes the new custom name remotely and mirrors it locally on success.
//
// On failure the local list and edit mode are left untouched.
func (v *GardenView) Rename(ctx context.Context, id int, name string) error {
	v.mu.Lock()
	uid := v.uid
	updated := append([]models.FavoritePlant(nil), v.favorites...)
	v.mu.Unlock()

	idx := models.IndexOf(updated, id)
	if uid == "" || idx < 0 {
		v.notifier.Show(MsgRenameFailed, notify.KindError)
		if uid == "" {
			return shared.ErrNotAuthenticated
		}
		return fmt.Errorf("%w: %d", shared.ErrFavoriteNotFound, id)
	}
	updated[idx].CustomName = strings.TrimSpace(name)

	if err := v.store.SetFavorites(ctx, uid, updated); err != nil {
		v.logger.Error("failed to rename favorite", "uid", uid, "plant", id, "error", err)
		v.notifier.Show(MsgRenameFailed, notify.KindError)
		return err
	}

	v.mu.Lock()
	v.favorites = updated
	v.editing, v.editID, v.draft = false, 0, ""
	v.mu.Unlock()

	v.notifier.Show(MsgRenamed, notify.KindSuccess)
	return nil
}

// Remove filters id out of the garden, writes the result and mirrors it locally on success.
func (v *GardenView) Remove(ctx context.Context, id int) error {
	v.mu.Lock()
	uid := v.uid
	current := append([]models.FavoritePlant(nil), v.favorites...)
	v.mu.Unlock()

	if uid == "" || models.IndexOf(current, id) < 0 {
		v.notifier.Show(MsgRemoveFailed, notify.KindError)
		if uid == "" {
			return shared.ErrNotAuthenticated
		}
		return fmt.Errorf("%w: %d", shared.ErrFavoriteNotFound, id)
	}

	updated := make([]models.FavoritePlant, 0, len(current))
	for _, f := range current {
		if f.ID != id {
			updated = append(updated, f)
		}
	}

	if err := v.store.SetFavorites(ctx, uid, updated); err != nil {
		v.logger.Error("failed to remove favorite", "uid", uid, "plant", id, "error", err)
		v.notifier.Show(MsgRemoveFailed, notify.KindError)
		return err
	}

	v.mu.Lock()
	v.favorites = updated
	if v.editing && v.editID == id {
		v.editing, v.editID, v.draft = false, 0, ""
	}
	v.mu.Unlock()

	v.notifier.Show(MsgRemoved, notify.KindSuccess)
	return nil
}
