package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

// UsersCollection holds one profile document per user id.
const UsersCollection = "users"

// ProfileRepository reads and writes favorites in user profile documents.
type ProfileRepository struct {
	docs *DocumentStore
}

// NewProfileRepository creates a new [ProfileRepository] over docs
func NewProfileRepository(docs *DocumentStore) *ProfileRepository {
	return &ProfileRepository{docs: docs}
}

// Profile returns the decoded profile document or [shared.ErrDocumentNotFound].
func (r *ProfileRepository) Profile(ctx context.Context, uid string) (*models.Profile, error) {
	doc, err := r.docs.Read(ctx, UsersCollection, uid)
	if err != nil {
		return nil, err
	}
	return models.DecodeProfile(doc.Data)
}

// Favorites returns the user's favorites. A missing profile is an empty garden.
func (r *ProfileRepository) Favorites(ctx context.Context, uid string) ([]models.FavoritePlant, error) {
	profile, err := r.Profile(ctx, uid)
	if errors.Is(err, shared.ErrDocumentNotFound) {
		return []models.FavoritePlant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return profile.Favorites, nil
}

// AddFavorite appends fav to the user's favorites, creating the profile on first save.
func (r *ProfileRepository) AddFavorite(ctx context.Context, uid string, fav models.FavoritePlant) error {
	if err := r.docs.UpsertAppend(ctx, UsersCollection, uid, models.FavoritesField, fav); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// SetFavorites replaces the whole favorites array of an existing profile.
func (r *ProfileRepository) SetFavorites(ctx context.Context, uid string, favs []models.FavoritePlant) error {
	if favs == nil {
		favs = []models.FavoritePlant{}
	}
	if err := r.docs.Update(ctx, UsersCollection, uid, map[string]any{models.FavoritesField: favs}); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}
