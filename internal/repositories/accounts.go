package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/mattn/go-sqlite3"
)

const accountColumns = `id, sequence, email, display_name, password_hash, provider, provider_subject, created_at, updated_at, deleted_at`

// AccountRepository persists identity provider [models.Account] rows.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account with generated ID and sequence.
//
// The email is normalized first; a taken email returns [shared.ErrAccountExists].
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = shared.NormalizeEmail(account.Email)
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	account.ID = shared.GenerateID()
	account.Sequence = sequence

	query := `
		INSERT INTO accounts (id, sequence, email, display_name, password_hash, provider, provider_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		account.ID, account.Sequence, account.Email, account.DisplayName, account.PasswordHash,
		account.Provider, account.ProviderSubject, account.CreatedAt, account.UpdatedAt)
	if isConstraintErr(err) {
		return fmt.Errorf("%w: %s", shared.ErrAccountExists, account.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	return r.queryOne(ctx, "id = ?", id)
}

// GetByEmail retrieves an account by normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.queryOne(ctx, "email = ?", shared.NormalizeEmail(email))
}

// GetByProvider retrieves a federated account by provider and subject.
func (r *AccountRepository) GetByProvider(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.queryOne(ctx, "provider = ? AND provider_subject = ?", provider, subject)
}

// UpdateDisplayName sets the account's display name.
func (r *AccountRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	query := `
		UPDATE accounts
		SET display_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.execOne(ctx, "update", id, query, name, time.Now(), id)
}

// LinkProvider attaches a federated identity to an existing account.
func (r *AccountRepository) LinkProvider(ctx context.Context, id, provider, subject string) error {
	query := `
		UPDATE accounts
		SET provider = ?, provider_subject = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.execOne(ctx, "link", id, query, provider, subject, time.Now(), id)
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.execOne(ctx, "delete", id, query, time.Now(), id)
}

// List retrieves all active accounts ordered by sequence.
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE deleted_at IS NULL ORDER BY sequence ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) queryOne(ctx context.Context, where string, args ...any) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` AND deleted_at IS NULL`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s account: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account   models.Account
		deletedAt sql.NullTime
	)
	err := row.Scan(&account.ID, &account.Sequence, &account.Email, &account.DisplayName, &account.PasswordHash,
		&account.Provider, &account.ProviderSubject, &account.CreatedAt, &account.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		account.DeletedAt = &deletedAt.Time
	}
	return &account, nil
}

func isConstraintErr(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}
