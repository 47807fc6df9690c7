// Package service contains the application services behind the HTTP surface.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/serpent-showdown/internal/domain"
)

// AccountRepository is the persistence surface the account directory needs.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountService owns user identity and credential records.
type AccountService struct {
	repo   AccountRepository
	logger *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(repo AccountRepository, logger *slog.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

// Register creates a new account. The email must be unique; the username must
// be present.
func (s *AccountService) Register(ctx context.Context, creds domain.Credentials) (*domain.Account, error) {
	if creds.Username == "" {
		return nil, domain.ErrMissingField
	}

	account := &domain.Account{
		ID:        uuid.New().String(),
		Username:  creds.Username,
		Email:     creds.Email,
		Password:  creds.Password,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate verifies credentials and returns the matching account. A
// missing account and a wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Credentials are stored and compared in plaintext. Production
	// deployments must replace this with salted one-way hash verification.
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

// CurrentSession always reports no authenticated session: there is no
// session or token mechanism. The null result is part of the contract.
func (s *AccountService) CurrentSession(ctx context.Context) (*domain.Account, error) {
	return nil, nil
}
