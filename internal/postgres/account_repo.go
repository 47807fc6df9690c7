package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/serpent-showdown/internal/domain"
)

// AccountRepo provides account persistence.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row. Returns domain.ErrDuplicateEmail when the
// email unique constraint is violated.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	const q = `
INSERT INTO accounts (id, username, email, password, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.Username, a.Email, a.Password, a.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// GetByEmail selects an account by its email, the unique lookup key.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `
SELECT id, username, email, password, created_at
FROM accounts WHERE email = $1`
	row := r.db.Pool.QueryRow(ctx, q, email)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Password, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting account by email: %w", err)
	}
	return &a, nil
}

// Count returns the total number of accounts.
func (r *AccountRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}
