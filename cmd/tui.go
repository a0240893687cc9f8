package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/desertthunder/bloomly/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	plants, err := r.plantCatalog()
	if err != nil {
		return err
	}
	tracks, err := r.trackCatalog()
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, ui.Deps{
		Plants:    plants,
		Tracks:    tracks,
		Favorites: store,
		User:      user,
		Logger:    fileLogger,
		NotifyTTL: r.config.Notifications.Duration(),
	})
	defer model.Close()

	if user != nil {
		model.Notifications().Show(auth.MsgSignInSuccess, notify.KindSuccess)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
