package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

func newPasswordAccount(email, name string) *models.Account {
	a := models.NewAccount(email, name, models.ProviderPassword)
	a.PasswordHash = "hash"
	return a
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		account := newPasswordAccount(" Ana@Example.COM ", "Ana")

		if err := repo.Create(ctx, account); err != nil {
			t.Fatalf("failed to create account: %v", err)
		}
		if account.ID == "" || account.Sequence != 1 {
			t.Errorf("expected id and sequence 1, got %q %d", account.ID, account.Sequence)
		}
		if account.Email != "ana@example.com" {
			t.Errorf("expected normalized email, got %q", account.Email)
		}
	})

	t.Run("Sequence Increments", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		first := newPasswordAccount("a@example.com", "A")
		second := newPasswordAccount("b@example.com", "B")
		repo.Create(ctx, first)
		repo.Create(ctx, second)

		if second.Sequence != first.Sequence+1 {
			t.Errorf("expected consecutive sequences, got %d and %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("Create Validation Error", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		err := repo.Create(ctx, models.NewAccount("", "x", models.ProviderPassword))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		repo.Create(ctx, newPasswordAccount("dup@example.com", "One"))

		err := repo.Create(ctx, newPasswordAccount("DUP@example.com", "Two"))
		if !errors.Is(err, shared.ErrAccountExists) {
			t.Errorf("expected ErrAccountExists, got %v", err)
		}
	})

	t.Run("Get And Lookups", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		google := models.NewAccount("g@example.com", "Gee", models.ProviderGoogle)
		google.ProviderSubject = "sub-1"
		if err := repo.Create(ctx, google); err != nil {
			t.Fatalf("failed to create account: %v", err)
		}

		got, err := repo.Get(ctx, google.ID)
		if err != nil || got.Email != "g@example.com" || got.CreatedAt.IsZero() {
			t.Fatalf("Get returned %+v, %v", got, err)
		}

		if got, err := repo.GetByEmail(ctx, "G@EXAMPLE.com"); err != nil || got.ID != google.ID {
			t.Errorf("GetByEmail returned %+v, %v", got, err)
		}
		if got, err := repo.GetByProvider(ctx, models.ProviderGoogle, "sub-1"); err != nil || got.ID != google.ID {
			t.Errorf("GetByProvider returned %+v, %v", got, err)
		}
		if _, err := repo.GetByProvider(ctx, models.ProviderGoogle, "other"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("UpdateDisplayName", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		account := newPasswordAccount("a@example.com", "")
		repo.Create(ctx, account)

		if err := repo.UpdateDisplayName(ctx, account.ID, "Ana"); err != nil {
			t.Fatalf("UpdateDisplayName failed: %v", err)
		}
		got, _ := repo.Get(ctx, account.ID)
		if got.DisplayName != "Ana" {
			t.Errorf("expected display name Ana, got %q", got.DisplayName)
		}
		if err := repo.UpdateDisplayName(ctx, "missing", "x"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("LinkProvider", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		account := newPasswordAccount("a@example.com", "Ana")
		repo.Create(ctx, account)

		if err := repo.LinkProvider(ctx, account.ID, models.ProviderGoogle, "sub-9"); err != nil {
			t.Fatalf("LinkProvider failed: %v", err)
		}
		got, err := repo.GetByProvider(ctx, models.ProviderGoogle, "sub-9")
		if err != nil || got.PasswordHash != "hash" {
			t.Errorf("linked account should keep its password, got %+v, %v", got, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		account := newPasswordAccount("a@example.com", "Ana")
		repo.Create(ctx, account)

		if err := repo.Delete(ctx, account.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(ctx, account.ID); !errors.Is(err, shared.ErrUserNotFound) {
			t.Error("deleted account should not be returned")
		}
		if err := repo.Delete(ctx, account.ID); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("second delete should fail with ErrUserNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewAccountRepository(setupTestDB(t))
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			repo.Create(ctx, newPasswordAccount(email, ""))
		}
		accounts, _ := repo.List(ctx)
		repo.Delete(ctx, accounts[1].ID)

		accounts, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(accounts) != 2 || accounts[0].Email != "a@example.com" || accounts[1].Email != "c@example.com" {
			t.Errorf("expected a and c in sequence order, got %+v", accounts)
		}
	})
}
