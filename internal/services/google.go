package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/bloomly/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleUser is the subset of the OpenID userinfo response used for sign-in.
type GoogleUser struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleService runs the OAuth2 authorization-code flow against Google.
type GoogleService struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleService creates a Google OAuth client from the configured credentials.
func NewGoogleService(cfg shared.GoogleConfig, client *http.Client) (*GoogleService, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: google client_id", shared.ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("%w: google client_secret", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}

	return &GoogleService{config: config, userInfoURL: googleUserInfoURL, httpClient: client}, nil
}

func (s *GoogleService) Name() string { return "Google" }

// WithEndpoints points the service at alternate OAuth and userinfo endpoints.
func (s *GoogleService) WithEndpoints(authURL, tokenURL, userInfoURL string) *GoogleService {
	s.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	s.userInfoURL = userInfoURL
	return s
}

// WithRedirectURL overrides the redirect URL, e.g. for the CLI's loopback callback.
func (s *GoogleService) WithRedirectURL(redirect string) *GoogleService {
	cfg := *s.config
	cfg.RedirectURL = redirect
	return &GoogleService{config: &cfg, userInfoURL: s.userInfoURL, httpClient: s.httpClient}
}

// RedirectURL returns the configured callback URL.
func (s *GoogleService) RedirectURL() string {
	return s.config.RedirectURL
}

// AuthURL returns the consent page URL for state.
func (s *GoogleService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for a token.
func (s *GoogleService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAPIRequest, redactURL(err))
	}
	return token, nil
}

// UserInfo fetches the OpenID profile of the token's owner.
func (s *GoogleService) UserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	if token == nil || token.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	client := newJSONClient(s.userInfoURL, googleUserInfoURL, s.httpClient)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token.AccessToken)

	var user GoogleUser
	if err := client.getJSON(ctx, "", nil, header, &user); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if user.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo missing subject", shared.ErrAPIRequest)
	}
	return &user, nil
}
