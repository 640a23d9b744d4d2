// Package transactions manages transactions and their per-account breakdowns.
package transactions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/storage"
	apperrors "github.com/feinhq/fein/internal/errors"
	"github.com/feinhq/fein/internal/logging"
	"github.com/feinhq/fein/internal/metrics"
)

// Service manages transactions. A transaction is visible to a user when at
// least one of its breakdowns touches an account that user owns.
type Service struct {
	accounts storage.AccountStore
	store    storage.TransactionStore
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// New constructs a transaction service.
func New(accounts storage.AccountStore, store storage.TransactionStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("transactions")
	}
	return &Service{accounts: accounts, store: store, log: log}
}

// AttachMetrics wires Prometheus counters. Optional.
func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Draft carries the client-supplied fields for a new transaction. A nil
// Amount defaults to the sum of earned and spent across the breakdowns; an
// explicit zero is kept as-is.
type Draft struct {
	Name   string
	Amount *float64
	Date   time.Time
}

// Create records a transaction with its breakdowns. Every breakdown account
// must exist and be owned by userID. The net amount is derived from the
// breakdowns.
func (s *Service) Create(ctx context.Context, userID string, draft Draft, breakdowns []transaction.Breakdown) (transaction.Transaction, []transaction.Breakdown, error) {
	txn := transaction.Transaction{Name: strings.TrimSpace(draft.Name), Date: draft.Date}

	if userID == "" {
		return transaction.Transaction{}, nil, apperrors.Unauthorized("user identity required")
	}
	if txn.Name == "" {
		return transaction.Transaction{}, nil, apperrors.Validation("transaction_name is required")
	}
	if len(breakdowns) == 0 {
		return transaction.Transaction{}, nil, apperrors.Validation("at least one breakdown is required")
	}

	var earned, spent float64
	for i, b := range breakdowns {
		if b.AccountID == "" {
			return transaction.Transaction{}, nil, apperrors.Validation("breakdown transaction_account_id is required")
		}
		if b.EarnedAmount < 0 || b.SpentAmount < 0 {
			return transaction.Transaction{}, nil, apperrors.Validation("breakdown amounts must not be negative")
		}

		acct, err := s.accounts.GetAccount(ctx, b.AccountID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return transaction.Transaction{}, nil, apperrors.NotFound("transaction account not found").WithDetails("transaction_account_id", b.AccountID)
			}
			return transaction.Transaction{}, nil, err
		}
		if acct.UserID != userID {
			return transaction.Transaction{}, nil, apperrors.Forbidden("account belongs to another user").WithDetails("transaction_account_id", b.AccountID)
		}

		earned += b.EarnedAmount
		spent += b.SpentAmount
		breakdowns[i] = b
	}

	txn.NetAmount = earned - spent
	if draft.Amount != nil {
		txn.Amount = *draft.Amount
	} else {
		txn.Amount = earned + spent
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}

	created, storedBreakdowns, err := s.store.CreateTransaction(ctx, txn, breakdowns)
	if err != nil {
		return transaction.Transaction{}, nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransactionCreated()
	}
	s.log.WithContext(ctx).WithField("transaction_id", created.ID).Info("transaction created")
	return created, storedBreakdowns, nil
}

// List returns transactions visible to userID. An empty userID lists all
// transactions and is reserved for admin callers.
func (s *Service) List(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Get retrieves a transaction if it is visible to userID. An empty userID
// bypasses the ownership check.
func (s *Service) Get(ctx context.Context, userID, id string) (transaction.Transaction, error) {
	if userID == "" {
		return s.store.GetTransaction(ctx, id)
	}
	return s.store.GetTransactionForUser(ctx, id, userID)
}

// Breakdowns returns the per-account breakdowns of a transaction restricted
// to accounts owned by userID.
func (s *Service) Breakdowns(ctx context.Context, userID, transactionID string) ([]transaction.Breakdown, error) {
	if userID == "" {
		if _, err := s.store.GetTransaction(ctx, transactionID); err != nil {
			return nil, err
		}
		return s.store.ListBreakdowns(ctx, transactionID)
	}

	// The visibility check doubles as an existence check.
	if _, err := s.store.GetTransactionForUser(ctx, transactionID, userID); err != nil {
		return nil, err
	}
	return s.store.ListBreakdownsForUser(ctx, transactionID, userID)
}

// Update applies partial changes to a transaction visible to userID.
func (s *Service) Update(ctx context.Context, userID, id string, upd transaction.Update) (transaction.Transaction, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return transaction.Transaction{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return transaction.Transaction{}, apperrors.Validation("transaction_name must not be empty")
		}
		existing.Name = name
	}
	if upd.Amount != nil {
		existing.Amount = *upd.Amount
	}
	if upd.NetAmount != nil {
		existing.NetAmount = *upd.NetAmount
	}
	if upd.Date != nil {
		existing.Date = *upd.Date
	}

	updated, err := s.store.UpdateTransaction(ctx, existing)
	if err != nil {
		return transaction.Transaction{}, err
	}
	s.log.WithContext(ctx).WithField("transaction_id", id).Info("transaction updated")
	return updated, nil
}

// Delete removes a transaction visible to userID along with its breakdowns.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).WithField("transaction_id", id).Info("transaction deleted")
	return nil
}
