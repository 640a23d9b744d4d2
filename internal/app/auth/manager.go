// Package auth handles password hashing and JWT issuance for API users.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/errors"
)

// DefaultTokenTTL is how long issued access tokens remain valid.
const DefaultTokenTTL = 30 * time.Minute

const (
	// RoleUser is the default role for authenticated users.
	RoleUser = "user"
	// RoleAdmin is granted to users whose email is on the admin allow-list.
	RoleAdmin = "admin"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// Manager issues and verifies HS256 access tokens and hashes passwords.
type Manager struct {
	secret      []byte
	tokenTTL    time.Duration
	adminEmails map[string]bool
	now         func() time.Time
}

// NewManager creates a Manager signing with secret. Emails in adminEmails
// receive the admin role on their tokens.
func NewManager(secret string, adminEmails []string) *Manager {
	admins := make(map[string]bool)
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
		}
	}

	return &Manager{
		secret:      []byte(secret),
		tokenTTL:    DefaultTokenTTL,
		adminEmails: admins,
		now:         time.Now,
	}
}

// SetTokenTTL overrides the token lifetime. Zero or negative values are ignored.
func (m *Manager) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		m.tokenTTL = ttl
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func (m *Manager) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RoleFor returns the role a user's token should carry.
func (m *Manager) RoleFor(email string) string {
	if m.adminEmails[strings.ToLower(strings.TrimSpace(email))] {
		return RoleAdmin
	}
	return RoleUser
}

// IssueToken mints a signed access token for u.
func (m *Manager) IssueToken(u user.User) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Email: u.Email,
		Role:  m.RoleFor(u.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken parses and validates an access token.
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.InvalidToken(nil).WithDetails("method", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, errors.InvalidToken(err)
	}
	if !token.Valid {
		return nil, errors.InvalidToken(nil)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.InvalidToken(nil).WithDetails("reason", "invalid claims type")
	}
	if claims.Subject == "" {
		return nil, errors.InvalidToken(nil).WithDetails("reason", "missing subject")
	}
	return claims, nil
}
