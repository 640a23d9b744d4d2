package transaction

import "time"

// Transaction is a dated financial event. NetAmount is derived from the
// breakdowns at creation time: Σ(earned − spent).
type Transaction struct {
	ID        string    `json:"transaction_id"`
	Name      string    `json:"transaction_name"`
	Amount    float64   `json:"amount"`
	NetAmount float64   `json:"net_amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Breakdown splits a transaction across one of the owner's accounts.
type Breakdown struct {
	ID            string  `json:"transaction_breakdown_id"`
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"transaction_account_id"`
	EarnedAmount  float64 `json:"earned_amount"`
	SpentAmount   float64 `json:"spent_amount"`
}

// Update carries the mutable fields of a transaction; nil means unchanged.
type Update struct {
	Name      *string
	Amount    *float64
	NetAmount *float64
	Date      *time.Time
}
