// package auth implements sign-in, sign-up and session observation
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/repositories"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/desertthunder/bloomly/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password sign-up accepts.
const MinPasswordLength = 6

// User-facing messages. Provider errors are never shown directly.
const (
	MsgSignInSuccess    = "Logged in successfully!"
	MsgSignInFailed     = "Invalid email or password."
	MsgGoogleSuccess    = "Signed in with Google!"
	MsgGoogleFailed     = "Could not sign in with Google."
	MsgSignUpFailed     = "Couldn't create your account. Please try again."
	MsgPasswordMismatch = "Passwords don't match."
	MsgWeakPassword     = "Password must be at least 6 characters."
	MsgLogoutSuccess    = "Logout successful!"
	MsgLogoutFailed     = "Could not log out. Try again."
)

// IdentityProvider is the set of identity operations the front ends consume.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.User, error)
	SignInWithFederated(ctx context.Context, provider, code string) (*models.User, error)
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SetDisplayName(ctx context.Context, user *models.User, name string) error
	SignOut(ctx context.Context) error
	ObserveAuthState(fn func(*models.User)) (unsubscribe func())
}

// FederatedClient is the OAuth side of a federated identity source.
type FederatedClient interface {
	AuthURL(state string) string
	SignIn(ctx context.Context, code string) (subject, email, name string, err error)
}

// googleClient adapts [services.GoogleService] to [FederatedClient].
type googleClient struct {
	svc *services.GoogleService
}

// NewGoogleClient wraps svc as a federated client.
func NewGoogleClient(svc *services.GoogleService) FederatedClient {
	return googleClient{svc: svc}
}

func (g googleClient) AuthURL(state string) string { return g.svc.AuthURL(state) }

func (g googleClient) SignIn(ctx context.Context, code string) (string, string, string, error) {
	token, err := g.svc.Exchange(ctx, code)
	if err != nil {
		return "", "", "", err
	}
	info, err := g.svc.UserInfo(ctx, token)
	if err != nil {
		return "", "", "", err
	}
	return info.Subject, info.Email, info.Name, nil
}

// Provider implements [IdentityProvider] over an [repositories.AccountRepository].
type Provider struct {
	accounts  *repositories.AccountRepository
	federated map[string]FederatedClient
	logger    *log.Logger
	cost      int

	mu        sync.Mutex
	current   *models.User
	observers map[int]func(*models.User)
	nextID    int
}

// Option configures a [Provider].
type Option func(*Provider)

// WithFederated registers a federated sign-in source under name (e.g. "google").
func WithFederated(name string, client FederatedClient) Option {
	return func(p *Provider) {
		if client != nil {
			p.federated[name] = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBcryptCost overrides the hashing cost. Tests use [bcrypt.MinCost].
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// NewProvider creates an identity provider with no signed-in user.
func NewProvider(accounts *repositories.AccountRepository, opts ...Option) *Provider {
	p := &Provider{
		accounts:  accounts,
		federated: make(map[string]FederatedClient),
		logger:    log.New(io.Discard),
		cost:      bcrypt.DefaultCost,
		observers: make(map[int]func(*models.User)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CurrentUser returns the signed-in user, or nil.
func (p *Provider) CurrentUser() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyUser(p.current)
}

// Restore sets the current user from a persisted session without a sign-in.
func (p *Provider) Restore(user *models.User) {
	p.setCurrent(user)
}

// SignInWithPassword checks credentials. Unknown email and wrong password both return [shared.ErrAuthFailed].
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*models.User, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		p.logger.Debug("sign in lookup failed", "error", err)
		return nil, shared.ErrAuthFailed
	}
	if account.PasswordHash == "" {
		return nil, shared.ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrAuthFailed
	}

	user := account.User()
	p.setCurrent(user)
	p.logger.Info("signed in", "uid", user.UID, "provider", models.ProviderPassword)
	return copyUser(user), nil
}

// FederatedURL returns the consent page for provider.
func (p *Provider) FederatedURL(provider, state string) (string, error) {
	client, ok := p.federated[provider]
	if !ok {
		return "", fmt.Errorf("%w: federated provider %q not configured", shared.ErrMissingConfig, provider)
	}
	return client.AuthURL(state), nil
}

// Federated reports whether provider is configured.
func (p *Provider) Federated(provider string) bool {
	_, ok := p.federated[provider]
	return ok
}

// SignInWithFederated completes a federated sign-in, linking or creating the account.
func (p *Provider) SignInWithFederated(ctx context.Context, provider, code string) (*models.User, error) {
	client, ok := p.federated[provider]
	if !ok {
		return nil, shared.ErrAuthFailed
	}

	subject, email, name, err := client.SignIn(ctx, code)
	if err != nil {
		p.logger.Warn("federated sign in failed", "provider", provider, "error", err)
		return nil, shared.ErrAuthFailed
	}

	account, err := p.federatedAccount(ctx, provider, subject, email, name)
	if err != nil {
		p.logger.Warn("federated account link failed", "provider", provider, "error", err)
		return nil, shared.ErrAuthFailed
	}

	user := account.User()
	p.setCurrent(user)
	p.logger.Info("signed in", "uid", user.UID, "provider", provider)
	return copyUser(user), nil
}

func (p *Provider) federatedAccount(ctx context.Context, provider, subject, email, name string) (*models.Account, error) {
	account, err := p.accounts.GetByProvider(ctx, provider, subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, err
	}

	account, err = p.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := p.accounts.LinkProvider(ctx, account.ID, provider, subject); err != nil {
			return nil, err
		}
		account.Provider, account.ProviderSubject = provider, subject
		return account, nil
	case !errors.Is(err, shared.ErrUserNotFound):
		return nil, err
	}

	account = models.NewAccount(email, name, provider)
	account.ProviderSubject = subject
	if err := p.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ValidateSignUp checks a sign-up form before any account is written.
func ValidateSignUp(email, password, confirm string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	if password != confirm {
		return shared.ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return shared.ErrWeakPassword
	}
	return nil
}

// SignUp creates a password account and signs it in.
//
// Store failures and duplicate emails return [shared.ErrSignUpFailed].
func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if err := ValidateSignUp(email, password, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		p.logger.Error("failed to hash password", "error", err)
		return nil, shared.ErrSignUpFailed
	}

	account := models.NewAccount(email, "", models.ProviderPassword)
	account.PasswordHash = string(hash)
	if err := p.accounts.Create(ctx, account); err != nil {
		p.logger.Warn("sign up failed", "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrSignUpFailed, err)
	}

	user := account.User()
	p.setCurrent(user)
	p.logger.Info("account created", "uid", user.UID, "sequence", account.Sequence)
	return copyUser(user), nil
}

// Register runs the full sign-up form: validation, account creation and display name.
func (p *Provider) Register(ctx context.Context, name, email, password, confirm string) (*models.User, error) {
	if err := ValidateSignUp(email, password, confirm); err != nil {
		return nil, err
	}
	user, err := p.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return user, nil
	}
	if err := p.SetDisplayName(ctx, user, name); err != nil {
		return nil, err
	}
	user.DisplayName = strings.TrimSpace(name)
	return user, nil
}

// SetDisplayName updates the user's display name and notifies observers if it is the current user.
func (p *Provider) SetDisplayName(ctx context.Context, user *models.User, name string) error {
	if user == nil {
		return shared.ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if err := p.accounts.UpdateDisplayName(ctx, user.UID, name); err != nil {
		return fmt.Errorf("failed to set display name: %w", err)
	}

	p.mu.Lock()
	isCurrent := p.current != nil && p.current.UID == user.UID
	p.mu.Unlock()

	if isCurrent {
		updated := copyUser(user)
		updated.DisplayName = name
		p.setCurrent(updated)
	}
	return nil
}

// SignOut clears the current user.
func (p *Provider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	p.logger.Info("signed out")
	return nil
}

// ObserveAuthState registers fn and immediately delivers the current state to it.
func (p *Provider) ObserveAuthState(fn func(*models.User)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.observers[id] = fn
	current := copyUser(p.current)
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.observers, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) setCurrent(user *models.User) {
	p.mu.Lock()
	p.current = copyUser(user)
	observers := make([]func(*models.User), 0, len(p.observers))
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range observers {
		fn(copyUser(user))
	}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
