package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "bloomly"

// Claims is the JWT payload of a session token.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. The secret must not be empty.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: session secret", shared.ErrMissingCredentials)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for user.
func (t *Tokens) Issue(user *models.User) (string, error) {
	if user == nil || user.UID == "" {
		return "", shared.ErrNotAuthenticated
	}

	now := t.now()
	claims := Claims{
		Email:    user.Email,
		Name:     user.DisplayName,
		Provider: user.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its user.
//
// Expired tokens wrap [shared.ErrTokenExpired]; all failures wrap [shared.ErrNotAuthenticated].
func (t *Tokens) Parse(token string) (*models.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrTokenExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", shared.ErrNotAuthenticated)
	}

	return &models.User{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Provider:    claims.Provider,
	}, nil
}
