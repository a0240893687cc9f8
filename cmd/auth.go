package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/server"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	googleProvider = "google"
	oauthTimeout   = 2 * time.Minute
)

// Login signs in with --email/--password or --google and stores the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	var (
		user *models.User
		err  error
	)

	if cmd.Bool("google") {
		user, err = r.loginWithGoogle(ctx, cmd.Int("callback-port"))
		if err != nil {
			r.writePlain("✗ %s\n", auth.MsgGoogleFailed)
			return err
		}
		r.writePlain("✓ %s\n", auth.MsgGoogleSuccess)
	} else {
		email, password := cmd.String("email"), cmd.String("password")
		if strings.TrimSpace(email) == "" || password == "" {
			return fmt.Errorf("%w: --email and --password (or --google) are required", shared.ErrMissingArgument)
		}

		provider, err := r.provider("")
		if err != nil {
			return err
		}
		user, err = provider.SignInWithPassword(ctx, email, password)
		if err != nil {
			r.writePlain("✗ %s\n", auth.MsgSignInFailed)
			return err
		}
		r.writePlain("✓ %s\n", auth.MsgSignInSuccess)
	}

	return r.saveSession(user)
}

func (r *Runner) saveSession(user *models.User) error {
	tokens, err := r.tokens()
	if err != nil {
		return err
	}
	if err := auth.SaveSession(r.sessionPath, tokens, user); err != nil {
		return err
	}
	r.logger.Debug("session saved", "path", r.sessionPath, "uid", user.UID)
	return r.writePlain("Signed in as %s\n", user.Greeting())
}

// loginWithGoogle runs the authorization-code flow with a local callback server.
//
// The listener is bound before the consent page opens so the redirect URL carries the real port.
func (r *Runner) loginWithGoogle(ctx context.Context, port int) (*models.User, error) {
	state := shared.GenerateID()

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", r.config.Server.Host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	redirect := fmt.Sprintf("http://%s/callback", listener.Addr().String())

	provider, err := r.provider(redirect)
	if err != nil {
		listener.Close()
		return nil, err
	}
	if !provider.Federated(googleProvider) {
		listener.Close()
		return nil, fmt.Errorf("%w: google client_id and client_secret must be set", shared.ErrMissingCredentials)
	}
	authURL, err := provider.FederatedURL(googleProvider, state)
	if err != nil {
		listener.Close()
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler("/callback", state, func(ctx context.Context, code string) (*models.User, error) {
		return provider.SignInWithFederated(ctx, googleProvider, code)
	})
	router := server.NewMuxRouter()
	router.Use(server.Recover(r.logger))
	router.Handler(oauthHandler)

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Google sign-in...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}
	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(oauthTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.User == nil {
		return nil, fmt.Errorf("%w: no user received", shared.ErrAuthFailed)
	}
	return result.User, nil
}

// Logout removes the stored session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := auth.ClearSession(r.sessionPath); err != nil {
		r.writePlain("✗ %s\n", auth.MsgLogoutFailed)
		return err
	}
	return r.writePlain("✓ %s\n", auth.MsgLogoutSuccess)
}

// Register creates a password account, sets its display name and stores the session.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	provider, err := r.provider("")
	if err != nil {
		return err
	}

	user, err := provider.Register(ctx, cmd.String("name"), cmd.String("email"), cmd.String("password"), cmd.String("confirm"))
	if err != nil {
		r.writePlain("✗ %s\n", signUpMessage(err))
		return err
	}

	r.writePlain("✓ Account created\n")
	return r.saveSession(user)
}

func signUpMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrPasswordMismatch):
		return auth.MsgPasswordMismatch
	case errors.Is(err, shared.ErrWeakPassword):
		return auth.MsgWeakPassword
	default:
		return auth.MsgSignUpFailed
	}
}

// Whoami prints the user stored in the session.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.currentUser()
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
			r.writePlain("Not signed in. Run 'bloomly login'.\n")
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader(user.Greeting())
	r.writePlain("UID:   %s\n", user.UID)
	r.writePlain("Email: %s\n", user.Email)
	if user.Provider != "" {
		r.writePlain("Via:   %s\n", user.Provider)
	}
	return nil
}
