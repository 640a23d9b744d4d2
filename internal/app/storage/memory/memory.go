// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/report"
	"github.com/feinhq/fein/internal/app/domain/tag"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage"
)

// Store holds every entity in maps guarded by a single RWMutex.
type Store struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	accounts     map[string]account.Account
	transactions map[string]transaction.Transaction
	breakdowns   map[string][]transaction.Breakdown // transaction id -> breakdowns
	tags         map[string]tag.Tag
	assignments  []tag.Assignment
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.AccountStore = (*Store)(nil)
var _ storage.TransactionStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		accounts:     make(map[string]account.Account),
		transactions: make(map[string]transaction.Transaction),
		breakdowns:   make(map[string][]transaction.Breakdown),
		tags:         make(map[string]tag.Tag),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[email]; exists {
		return user.User{}, storage.ErrDuplicateEmail
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Email = email

	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// AccountStore implementation -------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]account.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if userID == "" || acct.UserID == userID {
			result = append(result, acct)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// TransactionStore implementation ---------------------------------------------

func (s *Store) CreateTransaction(_ context.Context, txn transaction.Transaction, breakdowns []transaction.Breakdown) (transaction.Transaction, []transaction.Breakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if txn.Date.IsZero() {
		txn.Date = now
	}

	stored := make([]transaction.Breakdown, 0, len(breakdowns))
	for _, b := range breakdowns {
		if _, ok := s.accounts[b.AccountID]; !ok {
			return transaction.Transaction{}, nil, storage.ErrNotFound
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.TransactionID = txn.ID
		stored = append(stored, b)
	}

	s.transactions[txn.ID] = txn
	s.breakdowns[txn.ID] = stored
	return txn, stored, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[id]
	if !ok {
		return transaction.Transaction{}, storage.ErrNotFound
	}
	return txn, nil
}

func (s *Store) GetTransactionForUser(_ context.Context, id, userID string) (transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[id]
	if !ok || !s.reachableLocked(id, userID) {
		return transaction.Transaction{}, storage.ErrNotFound
	}
	return txn, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]transaction.Transaction, 0, len(s.transactions))
	for id, txn := range s.transactions {
		if userID == "" || s.reachableLocked(id, userID) {
			result = append(result, txn)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) UpdateTransaction(_ context.Context, txn transaction.Transaction) (transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[txn.ID]
	if !ok {
		return transaction.Transaction{}, storage.ErrNotFound
	}
	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now().UTC()

	s.transactions[txn.ID] = txn
	return txn, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	delete(s.breakdowns, id)

	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if a.TransactionID != id {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
	return nil
}

func (s *Store) ListBreakdowns(_ context.Context, transactionID string) ([]transaction.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]transaction.Breakdown, len(s.breakdowns[transactionID]))
	copy(out, s.breakdowns[transactionID])
	return out, nil
}

func (s *Store) ListBreakdownsForUser(_ context.Context, transactionID, userID string) ([]transaction.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []transaction.Breakdown
	for _, b := range s.breakdowns[transactionID] {
		if acct, ok := s.accounts[b.AccountID]; ok && acct.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// reachableLocked reports whether a transaction touches one of the user's
// accounts. Callers must hold at least the read lock.
func (s *Store) reachableLocked(transactionID, userID string) bool {
	for _, b := range s.breakdowns[transactionID] {
		if acct, ok := s.accounts[b.AccountID]; ok && acct.UserID == userID {
			return true
		}
	}
	return false
}

// TagStore implementation -----------------------------------------------------

func (s *Store) CreateTag(_ context.Context, t tag.Tag) (tag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	s.tags[t.ID] = t
	return t, nil
}

func (s *Store) GetTag(_ context.Context, id string) (tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return tag.Tag{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTags(_ context.Context) ([]tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]tag.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) CreateAssignment(_ context.Context, a tag.Assignment) (tag.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[a.TransactionID]; !ok {
		return tag.Assignment{}, storage.ErrNotFound
	}
	if _, ok := s.tags[a.TagID]; !ok {
		return tag.Assignment{}, storage.ErrNotFound
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	s.assignments = append(s.assignments, a)
	return a, nil
}

func (s *Store) ListTagsForTransaction(_ context.Context, transactionID string) ([]tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []tag.Tag
	seen := make(map[string]bool)
	for _, a := range s.assignments {
		if a.TransactionID != transactionID || seen[a.TagID] {
			continue
		}
		if t, ok := s.tags[a.TagID]; ok {
			result = append(result, t)
			seen[a.TagID] = true
		}
	}
	return result, nil
}

// ReportStore implementation --------------------------------------------------

func (s *Store) SummarizeAccounts(_ context.Context, userID string) ([]report.AccountSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byAccount := make(map[string]*report.AccountSummary)
	var order []string
	for _, acct := range s.accounts {
		if userID != "" && acct.UserID != userID {
			continue
		}
		byAccount[acct.ID] = &report.AccountSummary{AccountID: acct.ID, AccountName: acct.AccountName}
		order = append(order, acct.ID)
	}

	for _, list := range s.breakdowns {
		for _, b := range list {
			summary, ok := byAccount[b.AccountID]
			if !ok {
				continue
			}
			summary.Earned += b.EarnedAmount
			summary.Spent += b.SpentAmount
		}
	}

	sort.Slice(order, func(i, j int) bool {
		return s.accounts[order[i]].CreatedAt.Before(s.accounts[order[j]].CreatedAt)
	})

	result := make([]report.AccountSummary, 0, len(order))
	for _, id := range order {
		summary := byAccount[id]
		summary.Net = summary.Earned - summary.Spent
		result = append(result, *summary)
	}
	return result, nil
}
