// Package accounts manages transaction accounts owned by users.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/storage"
	apperrors "github.com/feinhq/fein/internal/errors"
	"github.com/feinhq/fein/internal/logging"
)

// Service manages transaction accounts.
type Service struct {
	users storage.UserStore
	store storage.AccountStore
	log   *logging.Logger
}

// New constructs an account service.
func New(users storage.UserStore, store storage.AccountStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("accounts")
	}
	return &Service{users: users, store: store, log: log}
}

// Create opens a new transaction account for the given user.
func (s *Service) Create(ctx context.Context, userID, accountName string, balance float64) (account.Account, error) {
	accountName = strings.TrimSpace(accountName)

	if userID == "" {
		return account.Account{}, apperrors.Unauthorized("user identity required")
	}
	if accountName == "" {
		return account.Account{}, apperrors.Validation("account_name is required")
	}

	if s.users != nil {
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return account.Account{}, apperrors.Unauthorized("unknown user")
			}
			return account.Account{}, err
		}
	}

	created, err := s.store.CreateAccount(ctx, account.Account{
		UserID:      userID,
		AccountName: accountName,
		Balance:     balance,
	})
	if err != nil {
		return account.Account{}, err
	}

	s.log.WithContext(ctx).WithField("account_id", created.ID).Info("account created")
	return created, nil
}

// List returns the accounts owned by userID.
func (s *Service) List(ctx context.Context, userID string) ([]account.Account, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("user identity required")
	}
	return s.store.ListAccounts(ctx, userID)
}

// ListAll returns every account. Callers must enforce the admin role.
func (s *Service) ListAll(ctx context.Context) ([]account.Account, error) {
	return s.store.ListAccounts(ctx, "")
}

// Get retrieves an account by identifier.
func (s *Service) Get(ctx context.Context, id string) (account.Account, error) {
	return s.store.GetAccount(ctx, id)
}
