package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feinhq/fein/internal/app/auth"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New("test", logging.Config{Level: "error", Format: "json"})
}

func issueTestToken(t *testing.T, m *auth.Manager, userID, email string) string {
	t.Helper()
	token, err := m.IssueToken(user.User{ID: userID, Email: email})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestNewAuthMiddleware(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	skipPaths := []string{"/healthz", "/metrics"}

	middleware := NewAuthMiddleware(manager, testLogger(), skipPaths)

	if middleware == nil {
		t.Fatal("NewAuthMiddleware() returned nil")
	}

	if len(middleware.skipPaths) != 2 {
		t.Errorf("skipPaths length = %d, want 2", len(middleware.skipPaths))
	}

	if !middleware.skipPaths["/healthz"] {
		t.Error("skipPaths does not contain /healthz")
	}
}

func TestAuthMiddleware_Handler_SkipPaths(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	middleware := NewAuthMiddleware(manager, testLogger(), []string{"/healthz"})

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/healthz/"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status code = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_Handler_MissingAuthHeader(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	middleware := NewAuthMiddleware(manager, testLogger(), nil)

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/accounts", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_Handler_InvalidAuthHeaderFormat(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	middleware := NewAuthMiddleware(manager, testLogger(), nil)

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"wrong prefix", "Basic token123"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/accounts", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_Handler_ValidToken(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	middleware := NewAuthMiddleware(manager, testLogger(), nil)

	var capturedUserID string
	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := issueTestToken(t, manager, "user-123", "test@example.com")

	req := httptest.NewRequest("GET", "/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusOK)
	}

	if capturedUserID != "user-123" {
		t.Errorf("User ID = %v, want user-123", capturedUserID)
	}
}

func TestAuthMiddleware_Handler_InvalidToken(t *testing.T) {
	manager := auth.NewManager("test-secret", nil)
	middleware := NewAuthMiddleware(manager, testLogger(), nil)

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/accounts", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.here")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_Handler_WrongSigningSecret(t *testing.T) {
	other := auth.NewManager("other-secret", nil)
	middleware := NewAuthMiddleware(auth.NewManager("test-secret", nil), testLogger(), nil)

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token := issueTestToken(t, other, "user-123", "test@example.com")

	req := httptest.NewRequest("GET", "/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_Handler_AdminRoleInContext(t *testing.T) {
	manager := auth.NewManager("test-secret", []string{"boss@example.com"})
	middleware := NewAuthMiddleware(manager, testLogger(), nil)

	var capturedRole string
	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRole = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := issueTestToken(t, manager, "user-123", "boss@example.com")

	req := httptest.NewRequest("GET", "/admin/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusOK)
	}

	if capturedRole != auth.RoleAdmin {
		t.Errorf("Role = %v, want %v", capturedRole, auth.RoleAdmin)
	}
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "with user ID",
			ctx:  logging.WithUserID(context.Background(), "user-123"),
			want: "user-123",
		},
		{
			name: "without user ID",
			ctx:  context.Background(),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserID(tt.ctx); got != tt.want {
				t.Errorf("GetUserID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireUserID(t *testing.T) {
	handler := RequireUserID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		ctx        context.Context
		wantStatus int
	}{
		{
			name:       "with user ID",
			ctx:        logging.WithUserID(context.Background(), "user-123"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "without user ID",
			ctx:        context.Background(),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/accounts", nil)
			req = req.WithContext(tt.ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		ctx        context.Context
		wantStatus int
	}{
		{
			name:       "admin role",
			ctx:        logging.WithRole(context.Background(), auth.RoleAdmin),
			wantStatus: http.StatusOK,
		},
		{
			name:       "user role",
			ctx:        logging.WithRole(context.Background(), auth.RoleUser),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no role",
			ctx:        context.Background(),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/accounts", nil)
			req = req.WithContext(tt.ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
