// Package storage defines the persistence interfaces of the application and
// the sentinel errors shared by their implementations.
package storage

import (
	"context"
	"errors"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/report"
	"github.com/feinhq/fein/internal/app/domain/tag"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
)

var (
	// ErrNotFound is returned when the requested record does not exist or
	// is not visible to the requesting user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user registration collides with
	// an existing email address.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// AccountStore persists transaction accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct account.Account) (account.Account, error)
	GetAccount(ctx context.Context, id string) (account.Account, error)
	// ListAccounts lists accounts for a user; an empty userID lists all.
	ListAccounts(ctx context.Context, userID string) ([]account.Account, error)
}

// TransactionStore persists transactions and their breakdowns.
type TransactionStore interface {
	// CreateTransaction stores the transaction and its breakdowns
	// atomically.
	CreateTransaction(ctx context.Context, txn transaction.Transaction, breakdowns []transaction.Breakdown) (transaction.Transaction, []transaction.Breakdown, error)
	GetTransaction(ctx context.Context, id string) (transaction.Transaction, error)
	// GetTransactionForUser resolves a transaction only when it is
	// reachable through a breakdown on one of the user's accounts.
	GetTransactionForUser(ctx context.Context, id, userID string) (transaction.Transaction, error)
	// ListTransactions lists transactions visible to a user; an empty
	// userID lists all.
	ListTransactions(ctx context.Context, userID string) ([]transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, txn transaction.Transaction) (transaction.Transaction, error)
	// DeleteTransaction removes the transaction together with its
	// breakdowns and tag assignments.
	DeleteTransaction(ctx context.Context, id string) error

	ListBreakdowns(ctx context.Context, transactionID string) ([]transaction.Breakdown, error)
	// ListBreakdownsForUser restricts the listing to breakdowns on the
	// user's own accounts.
	ListBreakdownsForUser(ctx context.Context, transactionID, userID string) ([]transaction.Breakdown, error)
}

// TagStore persists tags and their transaction assignments.
type TagStore interface {
	CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error)
	GetTag(ctx context.Context, id string) (tag.Tag, error)
	ListTags(ctx context.Context) ([]tag.Tag, error)
	CreateAssignment(ctx context.Context, a tag.Assignment) (tag.Assignment, error)
	ListTagsForTransaction(ctx context.Context, transactionID string) ([]tag.Tag, error)
}

// ReportStore computes per-account aggregates.
type ReportStore interface {
	// SummarizeAccounts aggregates breakdowns per account for a user; an
	// empty userID aggregates every account.
	SummarizeAccounts(ctx context.Context, userID string) ([]report.AccountSummary, error)
}
