package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	a := models.FavoritePlant{ID: 1, CommonName: "A", CustomName: "A"}
	b := models.FavoritePlant{ID: 2, CommonName: "B", CustomName: "B"}

	t.Run("Favorites Of Missing Profile", func(t *testing.T) {
		repo := NewProfileRepository(NewDocumentStore(setupTestDB(t)))
		favs, err := repo.Favorites(ctx, "nobody")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if favs == nil || len(favs) != 0 {
			t.Errorf("expected empty favorites, got %#v", favs)
		}
	})

	t.Run("AddFavorite First Time", func(t *testing.T) {
		repo := NewProfileRepository(NewDocumentStore(setupTestDB(t)))
		if err := repo.AddFavorite(ctx, "u1", a); err != nil {
			t.Fatalf("AddFavorite failed: %v", err)
		}
		favs, _ := repo.Favorites(ctx, "u1")
		if len(favs) != 1 || favs[0] != a {
			t.Errorf("expected [A], got %+v", favs)
		}
	})

	t.Run("SetFavorites Requires Profile", func(t *testing.T) {
		repo := NewProfileRepository(NewDocumentStore(setupTestDB(t)))
		err := repo.SetFavorites(ctx, "nobody", []models.FavoritePlant{a})
		if !errors.Is(err, shared.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	t.Run("Rename Then Remove", func(t *testing.T) {
		docs := NewDocumentStore(setupTestDB(t))
		repo := NewProfileRepository(docs)
		repo.AddFavorite(ctx, "u1", a)
		repo.AddFavorite(ctx, "u1", b)
		docs.Set(ctx, UsersCollection, "u1", map[string]any{"bio": "gardener"}, true)

		renamed := b
		renamed.CustomName = "X"
		if err := repo.SetFavorites(ctx, "u1", []models.FavoritePlant{a, renamed}); err != nil {
			t.Fatalf("rename write failed: %v", err)
		}
		if err := repo.SetFavorites(ctx, "u1", []models.FavoritePlant{a}); err != nil {
			t.Fatalf("remove write failed: %v", err)
		}

		profile, err := repo.Profile(ctx, "u1")
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if len(profile.Favorites) != 1 || profile.Favorites[0] != a {
			t.Errorf("expected [A] unchanged, got %+v", profile.Favorites)
		}
		if string(profile.Extra["bio"]) != `"gardener"` {
			t.Errorf("other fields should survive favorites writes, got %v", profile.Extra)
		}
	})

	t.Run("SetFavorites Nil Writes Empty Array", func(t *testing.T) {
		docs := NewDocumentStore(setupTestDB(t))
		repo := NewProfileRepository(docs)
		repo.AddFavorite(ctx, "u1", a)

		if err := repo.SetFavorites(ctx, "u1", nil); err != nil {
			t.Fatalf("SetFavorites failed: %v", err)
		}
		doc, _ := docs.Read(ctx, UsersCollection, "u1")
		if string(doc.Data[models.FavoritesField]) != "[]" {
			t.Errorf("expected empty array, got %s", doc.Data[models.FavoritesField])
		}
	})
}
