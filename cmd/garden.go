package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/bloomly/internal/formatter"
	"github.com/desertthunder/bloomly/internal/garden"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/urfave/cli/v3"
)

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: plant id %q", shared.ErrInvalidInput, s)
	}
	return id, nil
}

// Search prints up to twelve catalog results for the query argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	catalog, err := r.plantCatalog()
	if err != nil {
		return err
	}

	view := garden.NewSearchView(catalog, nil, nil, r.logger)
	if err := view.Submit(ctx, cmd.StringArg("query")); err != nil {
		return err
	}
	return formatter.Plants(r.output, format, view.Visible())
}

// Save runs the --query search and saves the plant with the given id to the signed-in user's garden.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	catalog, err := r.plantCatalog()
	if err != nil {
		return err
	}
	store, err := r.favoriteStore()
	if err != nil {
		return err
	}
	user, err := r.optionalUser()
	if err != nil {
		return err
	}

	view := garden.NewSearchView(catalog, store, r.notifier(), r.logger)
	query := cmd.String("query")
	if err := view.Submit(ctx, query); err != nil {
		return err
	}

	plant, ok := view.Find(id)
	if !ok {
		return fmt.Errorf("%w: plant %d is not in the results for %q", shared.ErrInvalidInput, id, query)
	}
	return view.AddFavorite(ctx, user, plant)
}

// loadGarden loads the signed-in user's garden into a view that reports through the CLI notifier.
func (r *Runner) loadGarden(ctx context.Context) (*garden.GardenView, error) {
	user, err := r.currentUser()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'bloomly login' first", err)
	}
	store, err := r.favoriteStore()
	if err != nil {
		return nil, err
	}

	view := garden.NewGardenView(store, r.notifier(), r.logger)
	if err := view.Load(ctx, user); err != nil {
		return nil, err
	}
	return view, nil
}

// GardenList prints the signed-in user's saved plants.
func (r *Runner) GardenList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	view, err := r.loadGarden(ctx)
	if err != nil {
		return err
	}

	if format == formatter.Text && view.Empty() {
		return r.writePlain("%s\n%s\n", garden.MsgEmptyGarden, garden.MsgEmptyGardenTip)
	}
	return formatter.Favorites(r.output, format, view.Favorites())
}

// GardenRename sets a saved plant's custom name.
func (r *Runner) GardenRename(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	view, err := r.loadGarden(ctx)
	if err != nil {
		return err
	}
	return view.Rename(ctx, id, cmd.StringArg("name"))
}

// GardenRemove deletes a saved plant.
func (r *Runner) GardenRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	view, err := r.loadGarden(ctx)
	if err != nil {
		return err
	}
	return view.Remove(ctx, id)
}

// Tracks prints the ambient track list.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	catalog, err := r.trackCatalog()
	if err != nil {
		return err
	}

	tracks, err := catalog.Tracks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}
	return formatter.Tracks(r.output, format, tracks)
}
