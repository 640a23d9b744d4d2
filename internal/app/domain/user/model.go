package user

import "time"

// User is a registered account holder. The password is stored only as a
// bcrypt hash and never serialised.
type User struct {
	ID           string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
