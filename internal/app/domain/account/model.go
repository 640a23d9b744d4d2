package account

import "time"

// Account is a transaction account owned by a single user. Balance is the
// user-declared figure; transaction breakdowns reference accounts but do not
// mutate it.
type Account struct {
	ID          string    `json:"transaction_account_id"`
	UserID      string    `json:"user_id"`
	AccountName string    `json:"account_name"`
	Balance     float64   `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
