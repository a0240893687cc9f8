// package services defines the catalog interfaces and their HTTP adapters
package services

import (
	"context"

	"github.com/desertthunder/bloomly/internal/models"
)

// PlantCatalog searches a remote plant database.
type PlantCatalog interface {
	// Search returns the first page of species matching query.
	// An empty query lists the first page of the whole catalog.
	Search(ctx context.Context, query string) ([]models.Plant, error)

	// Name returns the name of the catalog (e.g., "Perenual")
	Name() string
}

// TrackCatalog lists ambient audio tracks from a remote music catalog.
type TrackCatalog interface {
	// Tracks performs a single fetch of the configured track list.
	Tracks(ctx context.Context) ([]models.Track, error)

	// Name returns the name of the catalog (e.g., "Jamendo")
	Name() string
}
