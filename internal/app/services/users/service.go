// Package users implements registration and login on top of the user store.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/feinhq/fein/internal/app/auth"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage"
	apperrors "github.com/feinhq/fein/internal/errors"
	"github.com/feinhq/fein/internal/logging"
	"github.com/feinhq/fein/internal/metrics"
)

// Service manages user accounts and credentials.
type Service struct {
	store   storage.UserStore
	auth    *auth.Manager
	log     *logging.Logger
	metrics *metrics.Metrics
}

// New constructs a user service.
func New(store storage.UserStore, authMgr *auth.Manager, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("users")
	}
	return &Service{store: store, auth: authMgr, log: log}
}

// AttachMetrics wires Prometheus counters. Optional.
func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, userName, email, password string) (user.User, error) {
	userName = strings.TrimSpace(userName)
	email = strings.ToLower(strings.TrimSpace(email))

	if userName == "" {
		return user.User{}, apperrors.Validation("user_name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, apperrors.Validation("a valid email is required")
	}
	if password == "" {
		return user.User{}, apperrors.Validation("password is required")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return user.User{}, apperrors.Conflict("email already registered")
		}
		return user.User{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	s.log.WithContext(ctx).WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.recordLogin(false)
			return "", user.User{}, apperrors.Unauthorized("invalid email or password")
		}
		return "", user.User{}, err
	}

	if !s.auth.VerifyPassword(u.PasswordHash, password) {
		s.recordLogin(false)
		s.log.WithContext(ctx).WithField("user_id", u.ID).Warn("login failed: bad password")
		return "", user.User{}, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.auth.IssueToken(u)
	if err != nil {
		return "", user.User{}, err
	}

	s.recordLogin(true)
	s.log.WithContext(ctx).WithField("user_id", u.ID).Info("user logged in")
	return token, u, nil
}

// Get retrieves a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(success)
	}
}
