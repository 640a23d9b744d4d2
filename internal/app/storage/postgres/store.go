// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/report"
	"github.com/feinhq/fein/internal/app/domain/tag"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage"
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

// Store implements the storage interfaces using a *sql.DB handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.AccountStore = (*Store)(nil)
var _ storage.TransactionStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fein_users (id, user_name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.UserName, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isPQError(err, pqUniqueViolation) {
			return user.User{}, storage.ErrDuplicateEmail
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_name, email, password, created_at, updated_at
		FROM fein_users
		WHERE id::text = $1
	`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_name, email, password, created_at, updated_at
		FROM fein_users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, mapNoRows(err)
	}
	return u, nil
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fein_accounts (id, user_id, account_name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, acct.ID, acct.UserID, acct.AccountName, acct.Balance, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return account.Account{}, storage.ErrNotFound
		}
		return account.Account{}, err
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_name, balance, created_at, updated_at
		FROM fein_accounts
		WHERE id::text = $1
	`, id)

	var acct account.Account
	if err := row.Scan(&acct.ID, &acct.UserID, &acct.AccountName, &acct.Balance, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return account.Account{}, mapNoRows(err)
	}
	return acct, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_name, balance, created_at, updated_at
		FROM fein_accounts
		WHERE $1 = '' OR user_id::text = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []account.Account
	for rows.Next() {
		var acct account.Account
		if err := rows.Scan(&acct.ID, &acct.UserID, &acct.AccountName, &acct.Balance, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, acct)
	}
	return result, rows.Err()
}

// --- TransactionStore -------------------------------------------------------

func (s *Store) CreateTransaction(ctx context.Context, txn transaction.Transaction, breakdowns []transaction.Breakdown) (transaction.Transaction, []transaction.Breakdown, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if txn.Date.IsZero() {
		txn.Date = now
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return transaction.Transaction{}, nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO fein_transactions (id, transaction_name, amount, net_amount, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, txn.ID, txn.Name, txn.Amount, txn.NetAmount, txn.Date, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		return transaction.Transaction{}, nil, err
	}

	stored := make([]transaction.Breakdown, 0, len(breakdowns))
	for _, b := range breakdowns {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.TransactionID = txn.ID

		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO fein_breakdowns (id, transaction_id, account_id, earned_amount, spent_amount)
			VALUES ($1, $2, $3, $4, $5)
		`, b.ID, b.TransactionID, b.AccountID, b.EarnedAmount, b.SpentAmount)
		if err != nil {
			if isPQError(err, pqForeignKeyViolation) {
				return transaction.Transaction{}, nil, storage.ErrNotFound
			}
			return transaction.Transaction{}, nil, err
		}
		stored = append(stored, b)
	}

	if err := dbTx.Commit(); err != nil {
		return transaction.Transaction{}, nil, err
	}
	return txn, stored, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (transaction.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_name, amount, net_amount, date, created_at, updated_at
		FROM fein_transactions
		WHERE id::text = $1
	`, id)
	return scanTransaction(row)
}

func (s *Store) GetTransactionForUser(ctx context.Context, id, userID string) (transaction.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT DISTINCT t.id, t.transaction_name, t.amount, t.net_amount, t.date, t.created_at, t.updated_at
		FROM fein_transactions t
		JOIN fein_breakdowns b ON b.transaction_id = t.id
		JOIN fein_accounts a ON a.id = b.account_id
		WHERE t.id::text = $1 AND a.user_id::text = $2
	`, id, userID)
	return scanTransaction(row)
}

func scanTransaction(row *sql.Row) (transaction.Transaction, error) {
	var txn transaction.Transaction
	if err := row.Scan(&txn.ID, &txn.Name, &txn.Amount, &txn.NetAmount, &txn.Date, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		return transaction.Transaction{}, mapNoRows(err)
	}
	return txn, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	query := `
		SELECT id, transaction_name, amount, net_amount, date, created_at, updated_at
		FROM fein_transactions
		ORDER BY created_at
	`
	args := []interface{}{}
	if userID != "" {
		query = `
		SELECT DISTINCT t.id, t.transaction_name, t.amount, t.net_amount, t.date, t.created_at, t.updated_at
		FROM fein_transactions t
		JOIN fein_breakdowns b ON b.transaction_id = t.id
		JOIN fein_accounts a ON a.id = b.account_id
		WHERE a.user_id::text = $1
		ORDER BY t.created_at
		`
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []transaction.Transaction
	for rows.Next() {
		var txn transaction.Transaction
		if err := rows.Scan(&txn.ID, &txn.Name, &txn.Amount, &txn.NetAmount, &txn.Date, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, txn)
	}
	return result, rows.Err()
}

func (s *Store) UpdateTransaction(ctx context.Context, txn transaction.Transaction) (transaction.Transaction, error) {
	existing, err := s.GetTransaction(ctx, txn.ID)
	if err != nil {
		return transaction.Transaction{}, err
	}

	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE fein_transactions
		SET transaction_name = $2, amount = $3, net_amount = $4, date = $5, updated_at = $6
		WHERE id::text = $1
	`, txn.ID, txn.Name, txn.Amount, txn.NetAmount, txn.Date, txn.UpdatedAt)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return transaction.Transaction{}, storage.ErrNotFound
	}
	return txn, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM fein_transactions WHERE id::text = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListBreakdowns(ctx context.Context, transactionID string) ([]transaction.Breakdown, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, earned_amount, spent_amount
		FROM fein_breakdowns
		WHERE transaction_id::text = $1
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBreakdowns(rows)
}

func (s *Store) ListBreakdownsForUser(ctx context.Context, transactionID, userID string) ([]transaction.Breakdown, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.transaction_id, b.account_id, b.earned_amount, b.spent_amount
		FROM fein_breakdowns b
		JOIN fein_accounts a ON a.id = b.account_id
		WHERE b.transaction_id::text = $1 AND a.user_id::text = $2
	`, transactionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBreakdowns(rows)
}

func collectBreakdowns(rows *sql.Rows) ([]transaction.Breakdown, error) {
	var result []transaction.Breakdown
	for rows.Next() {
		var b transaction.Breakdown
		if err := rows.Scan(&b.ID, &b.TransactionID, &b.AccountID, &b.EarnedAmount, &b.SpentAmount); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// --- TagStore ---------------------------------------------------------------

func (s *Store) CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fein_tags (id, tag_name, created_at)
		VALUES ($1, $2, $3)
	`, t.ID, t.Name, t.CreatedAt)
	if err != nil {
		return tag.Tag{}, err
	}
	return t, nil
}

func (s *Store) GetTag(ctx context.Context, id string) (tag.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tag_name, created_at
		FROM fein_tags
		WHERE id::text = $1
	`, id)

	var t tag.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return tag.Tag{}, mapNoRows(err)
	}
	return t, nil
}

func (s *Store) ListTags(ctx context.Context) ([]tag.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tag_name, created_at
		FROM fein_tags
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tag.Tag
	for rows.Next() {
		var t tag.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) CreateAssignment(ctx context.Context, a tag.Assignment) (tag.Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fein_tag_assignments (id, transaction_id, tag_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.TransactionID, a.TagID, a.CreatedAt)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return tag.Assignment{}, storage.ErrNotFound
		}
		return tag.Assignment{}, err
	}
	return a, nil
}

func (s *Store) ListTagsForTransaction(ctx context.Context, transactionID string) ([]tag.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT t.id, t.tag_name, t.created_at
		FROM fein_tags t
		JOIN fein_tag_assignments ta ON ta.tag_id = t.id
		WHERE ta.transaction_id::text = $1
		ORDER BY t.created_at
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tag.Tag
	for rows.Next() {
		var t tag.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// --- ReportStore ------------------------------------------------------------

func (s *Store) SummarizeAccounts(ctx context.Context, userID string) ([]report.AccountSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.account_name,
		       COALESCE(SUM(b.earned_amount), 0) AS earned,
		       COALESCE(SUM(b.spent_amount), 0) AS spent
		FROM fein_accounts a
		LEFT JOIN fein_breakdowns b ON b.account_id = a.id
		WHERE $1 = '' OR a.user_id::text = $1
		GROUP BY a.id, a.account_name, a.created_at
		ORDER BY a.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []report.AccountSummary
	for rows.Next() {
		var summary report.AccountSummary
		if err := rows.Scan(&summary.AccountID, &summary.AccountName, &summary.Earned, &summary.Spent); err != nil {
			return nil, err
		}
		summary.Net = summary.Earned - summary.Spent
		result = append(result, summary)
	}
	return result, rows.Err()
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
