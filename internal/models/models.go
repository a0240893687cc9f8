// package models defines the data model for the plant catalog and personal garden
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const unnamedPlant = "Unnamed Plant"

// PlantImage holds the image URLs the plant catalog returns for a species.
type PlantImage struct {
	MediumURL string `json:"medium_url"`
	Thumbnail string `json:"thumbnail"`
}

// Plant is a species record from the plant catalog.
type Plant struct {
	ID             int         `json:"id"`
	CommonName     string      `json:"common_name"`
	ScientificName Names       `json:"scientific_name"`
	DefaultImage   *PlantImage `json:"default_image"`
}

// ImageURL returns the medium image, falling back to the thumbnail.
func (p Plant) ImageURL() string {
	if p.DefaultImage == nil {
		return ""
	}
	if p.DefaultImage.MediumURL != "" {
		return p.DefaultImage.MediumURL
	}
	return p.DefaultImage.Thumbnail
}

// DisplayName returns the common name, then the scientific name.
func (p Plant) DisplayName() string {
	if name := strings.TrimSpace(p.CommonName); name != "" {
		return name
	}
	if sci := p.ScientificName.String(); sci != "" {
		return sci
	}
	return unnamedPlant
}

// Names is a list of names that also decodes from a single JSON string.
//
// The catalog returns scientific_name as an array; older payloads use a string.
type Names []string

// UnmarshalJSON accepts either a string or an array of strings.
func (n *Names) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*n = nil
		} else {
			*n = Names{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("names: expected string or array: %w", err)
	}
	*n = many
	return nil
}

func (n Names) String() string {
	return strings.Join(n, ", ")
}

// FavoritePlant is the snapshot of a [Plant] stored in a user's profile document.
//
// CustomName starts as the common name and is edited independently afterwards.
type FavoritePlant struct {
	ID             int    `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	ImageURL       string `json:"image"`
	CustomName     string `json:"custom_name"`
}

// NewFavorite snapshots a catalog plant.
func NewFavorite(p Plant) FavoritePlant {
	return FavoritePlant{
		ID:             p.ID,
		CommonName:     p.CommonName,
		ScientificName: p.ScientificName.String(),
		ImageURL:       p.ImageURL(),
		CustomName:     p.CommonName,
	}
}

// DisplayName returns the custom name, then the common name.
func (f FavoritePlant) DisplayName() string {
	return firstNonBlank(f.CustomName, f.CommonName, unnamedPlant)
}

// Track is an audio track from the music catalog. Immutable once fetched.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AudioURL string `json:"audio_url"`
}

// User is the identity owned by the identity provider.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Provider    string `json:"provider,omitempty"`
}

// Greeting returns the name shown on the profile page.
func (u *User) Greeting() string {
	if u == nil {
		return "User"
	}
	return firstNonBlank(u.DisplayName, "User")
}

// Sign-in methods recorded on an [Account].
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Account is the identity provider's stored record of a [User].
type Account struct {
	ID              string
	Sequence        int
	Email           string
	DisplayName     string
	PasswordHash    string
	Provider        string
	ProviderSubject string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// NewAccount creates an account for provider with creation timestamps set.
func NewAccount(email, displayName, provider string) *Account {
	now := time.Now()
	return &Account{
		Email:       email,
		DisplayName: displayName,
		Provider:    provider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the fields every account needs.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return errors.New("email is required")
	}
	switch a.Provider {
	case ProviderPassword:
		if a.PasswordHash == "" {
			return errors.New("password hash is required")
		}
	case ProviderGoogle:
		if a.ProviderSubject == "" {
			return errors.New("provider subject is required")
		}
	default:
		return fmt.Errorf("unknown provider %q", a.Provider)
	}
	return nil
}

// User returns the public identity for the account.
func (a *Account) User() *User {
	return &User{UID: a.ID, DisplayName: a.DisplayName, Email: a.Email, Provider: a.Provider}
}

// Profile is the decoded user document.
//
// Extra carries every other top-level field so writes can leave it untouched.
type Profile struct {
	Favorites []FavoritePlant
	Extra     map[string]json.RawMessage
}

// FavoritesField is the document field that stores the favorites array.
const FavoritesField = "favorites"

// DecodeProfile decodes a raw user document.
func DecodeProfile(data map[string]json.RawMessage) (*Profile, error) {
	profile := &Profile{Favorites: []FavoritePlant{}, Extra: map[string]json.RawMessage{}}
	for k, v := range data {
		if k != FavoritesField {
			profile.Extra[k] = v
			continue
		}
		if string(v) == "null" {
			continue
		}
		if err := json.Unmarshal(v, &profile.Favorites); err != nil {
			return nil, fmt.Errorf("failed to decode favorites: %w", err)
		}
	}
	return profile, nil
}

// IndexOf returns the position of the favorite with id, or -1.
func IndexOf(favorites []FavoritePlant, id int) int {
	for i, f := range favorites {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
