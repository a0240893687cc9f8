package garden

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/shared"
	tu "github.com/desertthunder/bloomly/internal/testing"
)

var testUser = &models.User{UID: "u1", Email: "ana@example.com", DisplayName: "Ana"}

func TestSearchView(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Query Is Rejected Locally", func(t *testing.T) {
		catalog := &tu.StubPlantCatalog{Plants: tu.MakePlants("Tulip", 3)}
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(catalog, tu.NewMemoryFavoriteStore(), notes, nil)

		if err := v.Submit(ctx, "   "); !errors.Is(err, shared.ErrEmptyQuery) {
			t.Fatalf("expected ErrEmptyQuery, got %v", err)
		}
		if catalog.Calls() != 0 || notes.Len() != 0 || v.NoResults() {
			t.Error("blank submit should not touch the catalog, notifier or state")
		}
	})

	t.Run("Caps Visible Results At Twelve", func(t *testing.T) {
		catalog := &tu.StubPlantCatalog{Plants: tu.MakePlants("Tulip", 15)}
		v := NewSearchView(catalog, tu.NewMemoryFavoriteStore(), nil, nil)

		if err := v.Submit(ctx, "tulip"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if len(v.Results()) != 15 {
			t.Errorf("expected all 15 results to be kept, got %d", len(v.Results()))
		}
		if len(v.Visible()) != MaxResults {
			t.Errorf("expected %d visible results, got %d", MaxResults, len(v.Visible()))
		}
		if v.Query() != "tulip" || catalog.Queries[0] != "tulip" {
			t.Errorf("unexpected query bookkeeping %q / %v", v.Query(), catalog.Queries)
		}
	})

	t.Run("Zero Results Warn Once Per Submit", func(t *testing.T) {
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(&tu.StubPlantCatalog{}, tu.NewMemoryFavoriteStore(), notes, nil)

		for i := 1; i <= 2; i++ {
			if err := v.Submit(ctx, "zzz"); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if notes.Count(notify.KindWarning) != i || notes.Len() != i {
				t.Fatalf("expected exactly %d warning(s), got %+v", i, notes.Shown)
			}
		}
		if last, _ := notes.Last(); last.Message != MsgNoPlantsFound {
			t.Errorf("unexpected message %q", last.Message)
		}
		if !v.NoResults() {
			t.Error("view should report no plants found")
		}
	})

	t.Run("Failure Clears Results", func(t *testing.T) {
		catalog := &tu.StubPlantCatalog{Plants: tu.MakePlants("Rose", 2)}
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(catalog, tu.NewMemoryFavoriteStore(), notes, nil)
		v.Submit(ctx, "rose")

		catalog.Err = shared.ErrServiceUnavailable
		err := v.Submit(ctx, "rose")

		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected wrapped network error, got %v", err)
		}
		if len(v.Results()) != 0 {
			t.Error("results should be cleared on failure")
		}
		if last, _ := notes.Last(); last.Kind != notify.KindError || last.Message != MsgSearchFailed {
			t.Errorf("expected error notification, got %+v", last)
		}
	})

	t.Run("Stale Result Is Dropped", func(t *testing.T) {
		slow := &tu.StubPlantCatalog{Plants: tu.MakePlants("Old", 1), Gate: make(chan struct{})}
		v := NewSearchView(slow, tu.NewMemoryFavoriteStore(), nil, nil)

		done := make(chan error, 1)
		go func() { done <- v.Submit(ctx, "old") }()
		for slow.Calls() == 0 {
			time.Sleep(time.Millisecond)
		}

		v.catalog = &tu.StubPlantCatalog{Plants: tu.MakePlants("New", 2)}
		if err := v.Submit(ctx, "new"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		close(slow.Gate)
		if err := <-done; err != nil {
			t.Fatalf("stale submit should return nil, got %v", err)
		}

		if v.Query() != "new" || len(v.Results()) != 2 {
			t.Errorf("stale result overwrote newer one: query=%q results=%d", v.Query(), len(v.Results()))
		}
	})

	t.Run("AddFavorite Requires User", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(&tu.StubPlantCatalog{}, store, notes, nil)

		err := v.AddFavorite(ctx, nil, tu.MakePlants("Tulip", 1)[0])
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if store.Writes != 0 {
			t.Error("no remote write should happen without a user")
		}
		if last, _ := notes.Last(); last.Kind != notify.KindError || last.Message != MsgLoginToSave {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("AddFavorite Creates Profile", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(&tu.StubPlantCatalog{}, store, notes, nil)
		plant := tu.MakePlants("Tulip", 1)[0]

		if err := v.AddFavorite(ctx, testUser, plant); err != nil {
			t.Fatalf("AddFavorite failed: %v", err)
		}

		favs, _ := store.Favorites(ctx, testUser.UID)
		if len(favs) != 1 || favs[0] != models.NewFavorite(plant) {
			t.Errorf("expected favorites = [plant], got %+v", favs)
		}
		if last, _ := notes.Last(); last.Kind != notify.KindSuccess || last.Message != "Tulip 1 added to your garden!" {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("AddFavorite Appends In Order", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		plants := tu.MakePlants("P", 3)
		store.Seed(testUser.UID, models.NewFavorite(plants[0]), models.NewFavorite(plants[1]))
		v := NewSearchView(&tu.StubPlantCatalog{}, store, nil, nil)

		v.AddFavorite(ctx, testUser, plants[2])

		favs, _ := store.Favorites(ctx, testUser.UID)
		if len(favs) != 3 || favs[0].ID != 1 || favs[1].ID != 2 || favs[2].ID != 3 {
			t.Errorf("expected [A B C], got %+v", favs)
		}
	})

	t.Run("AddFavorite Store Failure", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		store.AddErr = errors.New("disk full")
		notes := &tu.RecordingNotifier{}
		v := NewSearchView(&tu.StubPlantCatalog{}, store, notes, nil)

		if err := v.AddFavorite(ctx, testUser, tu.MakePlants("T", 1)[0]); err == nil {
			t.Fatal("expected store error")
		}
		if last, _ := notes.Last(); last.Message != MsgSaveFailed {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("Find", func(t *testing.T) {
		v := NewSearchView(&tu.StubPlantCatalog{Plants: tu.MakePlants("T", 3)}, nil, nil, nil)
		v.Submit(ctx, "t")
		if p, ok := v.Find(2); !ok || p.ID != 2 {
			t.Errorf("expected to find plant 2, got %+v", p)
		}
		if _, ok := v.Find(99); ok {
			t.Error("unexpected plant 99")
		}
	})

	t.Run("SavedMessage Falls Back To Scientific Name", func(t *testing.T) {
		p := models.Plant{ScientificName: models.Names{"Rosa canina"}}
		if got := SavedMessage(p); got != "Rosa canina added to your garden!" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func seededGarden(t *testing.T) (*GardenView, *tu.MemoryFavoriteStore, *tu.RecordingNotifier) {
	t.Helper()
	store := tu.NewMemoryFavoriteStore()
	store.Seed(testUser.UID,
		models.FavoritePlant{ID: 1, CommonName: "A", CustomName: "A"},
		models.FavoritePlant{ID: 2, CommonName: "B", CustomName: "B"},
	)
	notes := &tu.RecordingNotifier{}
	v := NewGardenView(store, notes, nil)
	if err := v.Load(context.Background(), testUser); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return v, store, notes
}

func TestGardenView(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Without User", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		store.ReadErr = errors.New("should not be read")
		v := NewGardenView(store, nil, nil)

		if err := v.Load(ctx, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !v.Empty() || !v.Loaded() {
			t.Error("expected an empty loaded garden")
		}
	})

	t.Run("Load Failure", func(t *testing.T) {
		store := tu.NewMemoryFavoriteStore()
		store.ReadErr = errors.New("offline")
		notes := &tu.RecordingNotifier{}
		v := NewGardenView(store, notes, nil)

		if err := v.Load(ctx, testUser); err == nil {
			t.Fatal("expected load error")
		}
		if last, _ := notes.Last(); last.Kind != notify.KindError || last.Message != MsgLoadFailed {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("Rename Then Remove", func(t *testing.T) {
		v, store, notes := seededGarden(t)

		if err := v.Rename(ctx, 2, "X"); err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		if got := v.Favorites()[1].CustomName; got != "X" {
			t.Errorf("expected local rename to X, got %q", got)
		}
		if err := v.Remove(ctx, 2); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}

		want := models.FavoritePlant{ID: 1, CommonName: "A", CustomName: "A"}
		local := v.Favorites()
		remote, _ := store.Favorites(ctx, testUser.UID)
		if len(local) != 1 || local[0] != want || len(remote) != 1 || remote[0] != want {
			t.Errorf("expected [A] unchanged locally and remotely, got %+v / %+v", local, remote)
		}
		if notes.Count(notify.KindSuccess) != 2 {
			t.Errorf("expected two success notifications, got %+v", notes.Shown)
		}
	})

	t.Run("Rename Failure Leaves Local State", func(t *testing.T) {
		v, store, notes := seededGarden(t)
		v.StartEdit(2)
		store.SetErr = errors.New("permission denied")

		if err := v.Rename(ctx, 2, "X"); err == nil {
			t.Fatal("expected rename error")
		}
		if got := v.Favorites()[1].CustomName; got != "B" {
			t.Errorf("local state advanced on failure: %q", got)
		}
		if _, _, editing := v.Editing(); !editing {
			t.Error("failed rename should stay in edit mode")
		}
		if last, _ := notes.Last(); last.Message != MsgRenameFailed {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("Remove Failure Leaves Local State", func(t *testing.T) {
		v, store, notes := seededGarden(t)
		store.SetErr = errors.New("permission denied")

		if err := v.Remove(ctx, 1); err == nil {
			t.Fatal("expected remove error")
		}
		if len(v.Favorites()) != 2 {
			t.Error("local state advanced on failure")
		}
		if last, _ := notes.Last(); last.Message != MsgRemoveFailed {
			t.Errorf("unexpected notification %+v", last)
		}
	})

	t.Run("Unknown Id", func(t *testing.T) {
		v, store, _ := seededGarden(t)
		if err := v.Remove(ctx, 42); !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound, got %v", err)
		}
		if err := v.Rename(ctx, 42, "x"); !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound, got %v", err)
		}
		if err := v.StartEdit(42); !errors.Is(err, shared.ErrFavoriteNotFound) {
			t.Errorf("expected ErrFavoriteNotFound, got %v", err)
		}
		if store.Writes != 0 {
			t.Error("unknown ids should not write")
		}
	})

	t.Run("Edit Mode Keys", func(t *testing.T) {
		v, store, _ := seededGarden(t)

		if err := v.StartEdit(1); err != nil {
			t.Fatalf("StartEdit failed: %v", err)
		}
		if id, draft, ok := v.Editing(); !ok || id != 1 || draft != "A" {
			t.Fatalf("expected draft prefilled with A, got %d %q %v", id, draft, ok)
		}

		v.SetDraft("discard me")
		v.HandleKey(ctx, "esc")
		if _, _, ok := v.Editing(); ok || store.Writes != 0 {
			t.Error("escape should leave edit mode without writing")
		}

		v.StartEdit(1)
		v.SetDraft("Sunny")
		if err := v.HandleKey(ctx, "enter"); err != nil {
			t.Fatalf("enter commit failed: %v", err)
		}
		if _, _, ok := v.Editing(); ok {
			t.Error("successful commit should leave edit mode")
		}
		if v.Favorites()[0].CustomName != "Sunny" || v.Favorites()[0].DisplayName() != "Sunny" {
			t.Errorf("unexpected favorites %+v", v.Favorites())
		}
	})

	t.Run("Blur Commits", func(t *testing.T) {
		v, _, _ := seededGarden(t)
		v.StartEdit(2)
		v.SetDraft("Blurred")
		if err := v.Commit(ctx); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if v.Favorites()[1].CustomName != "Blurred" {
			t.Error("commit on blur should rename")
		}
		if err := v.Commit(ctx); err != nil {
			t.Errorf("commit outside edit mode should be a no-op, got %v", err)
		}
	})

	t.Run("Signed Out Writes", func(t *testing.T) {
		v := NewGardenView(tu.NewMemoryFavoriteStore(), nil, nil)
		if err := v.Remove(ctx, 1); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
