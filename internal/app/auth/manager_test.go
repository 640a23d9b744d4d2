package auth

import (
	"testing"
	"time"

	"github.com/feinhq/fein/internal/app/domain/user"
)

func TestPasswordHashing(t *testing.T) {
	m := NewManager("secret", nil)

	hash, err := m.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !m.VerifyPassword(hash, "hunter2") {
		t.Fatal("expected password to verify")
	}
	if m.VerifyPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	m := NewManager("secret", []string{"Boss@Example.com"})

	token, err := m.IssueToken(user.User{ID: "u1", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Fatalf("expected subject u1, got %q", claims.UserID())
	}
	if claims.Email != "ana@example.com" {
		t.Fatalf("unexpected email claim: %q", claims.Email)
	}
	if claims.Role != RoleUser {
		t.Fatalf("expected user role, got %q", claims.Role)
	}
}

func TestAdminAllowList(t *testing.T) {
	m := NewManager("secret", []string{"boss@example.com"})

	token, err := m.IssueToken(user.User{ID: "u2", Email: "BOSS@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %q", claims.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("secret", nil)
	issued := time.Now().UTC()
	m.now = func() time.Time { return issued }

	token, err := m.IssueToken(user.User{ID: "u3", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	m.now = func() time.Time { return issued.Add(DefaultTokenTTL + time.Minute) }
	if _, err := m.VerifyToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m := NewManager("secret", nil)
	other := NewManager("other-secret", nil)

	token, err := other.IssueToken(user.User{ID: "u4", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := m.VerifyToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}
