package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

// sessionFile is the CLI's persisted sign-in.
type sessionFile struct {
	Token string `json:"token"`
}

// DefaultSessionPath returns ~/.bloomly/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".bloomly", "session.json"), nil
}

// SaveSession issues a token for user and writes it to path with owner-only permissions.
func SaveSession(path string, tokens *Tokens, user *models.User) error {
	token, err := tokens.Issue(user)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sessionFile{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// LoadSession reads and verifies the session at path.
//
// A missing file returns [shared.ErrNotAuthenticated].
func LoadSession(path string, tokens *Tokens) (*models.User, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s sessionFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: corrupt session file", shared.ErrNotAuthenticated)
	}
	return tokens.Parse(s.Token)
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
