package tag

import "time"

// Tag is a global label assignable to any transaction.
type Tag struct {
	ID        string    `json:"tag_id"`
	Name      string    `json:"tag_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Assignment links a tag to a transaction.
type Assignment struct {
	ID            string    `json:"tag_assignment_id"`
	TransactionID string    `json:"transaction_id"`
	TagID         string    `json:"tag_id"`
	CreatedAt     time.Time `json:"created_at"`
}
