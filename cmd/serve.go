package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/desertthunder/bloomly/internal/web"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the web app until interrupted, then shuts down gracefully.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}
	if err := r.config.Validate(); err != nil {
		return err
	}
	if r.config.UsesPlaceholderSecret() {
		if !cmd.Bool("insecure") {
			return fmt.Errorf("%w: server.session_secret is the template value; set BLOOMLY_SESSION_SECRET or pass --insecure", shared.ErrInvalidConfig)
		}
		r.logger.Warn("serving with the template session secret; session cookies can be forged")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := r.webApp(cmd.Bool("secure-cookies"))
	if err != nil {
		return err
	}
	defer app.Close()

	addr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting web server", "addr", addr, "google", r.config.GoogleEnabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	url := fmt.Sprintf("http://%s/", addr)
	r.writePlain("→ Bloomly is running at %s (Ctrl+C to stop)\n", url)
	if cmd.Bool("open") {
		if err := r.openBrowser(url); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
		}
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// webApp wires the browser front end to the configured stores, catalogs and identity provider.
func (r *Runner) webApp(secureCookies bool) (*web.App, error) {
	plants, err := r.plantCatalog()
	if err != nil {
		return nil, err
	}
	tracks, err := r.trackCatalog()
	if err != nil {
		return nil, err
	}
	store, err := r.favoriteStore()
	if err != nil {
		return nil, err
	}
	provider, err := r.provider("")
	if err != nil {
		return nil, err
	}
	tokens, err := r.tokens()
	if err != nil {
		return nil, err
	}

	return web.New(web.Options{
		Plants:        plants,
		Tracks:        tracks,
		Favorites:     store,
		Auth:          provider,
		Tokens:        tokens,
		Logger:        shared.WithLogger(r.logger, "component", "web"),
		NotifyTTL:     r.config.Notifications.Duration(),
		SecureCookies: secureCookies,
	})
}
