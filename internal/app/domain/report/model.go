package report

import "time"

// AccountSummary aggregates the breakdowns recorded against one account.
type AccountSummary struct {
	AccountID   string  `json:"transaction_account_id"`
	AccountName string  `json:"account_name"`
	Earned      float64 `json:"earned"`
	Spent       float64 `json:"spent"`
	Net         float64 `json:"net"`
}

// Overview is a snapshot of every account's summary, refreshed in the
// background for the admin surface.
type Overview struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Accounts    []AccountSummary `json:"accounts"`
	TotalEarned float64          `json:"total_earned"`
	TotalSpent  float64          `json:"total_spent"`
	TotalNet    float64          `json:"total_net"`
}
