package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/billing-service/internal/auth"
	"github.com/spec-kit/billing-service/internal/config"
	"github.com/spec-kit/billing-service/internal/domain"
	"github.com/spec-kit/billing-service/internal/repository"
	apperrors "github.com/spec-kit/billing-service/pkg/util/errorutil"
)

// bcrypt ignores input past 72 bytes; longer passwords are refused instead.
const maxPasswordBytes = 72

// AuthService coordinates registration and login flows.
type AuthService struct {
	users     repository.UserRepository
	tokenMgr  *auth.TokenManager
	passwords *auth.PasswordVerifier
	limiter   auth.LoginLimiter
	logger    *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Limiter  auth.LoginLimiter
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	passwords, err := auth.NewPasswordVerifier(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init password verifier: %w", err)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.NoopLoginLimiter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     deps.UserRepo,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		passwords: passwords,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// RegisterUser creates a new account. The returned user still carries the
// password hash; handlers must not render it.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("missing data", nil)
	}
	if len(password) > maxPasswordBytes {
		return nil, apperrors.NewValidationError("password must be at most 72 bytes", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewUserExists()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewUserExists()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates an account by exact email match. Unknown email and
// wrong password fail identically.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	}
	if !allowed {
		return nil, "", time.Time{}, apperrors.NewTooManyAttempts("too many failed login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, fmt.Errorf("lookup user: %w", err)
		}
		_ = s.passwords.Reject(password)
		s.recordFailure(ctx, email)
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email)
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn("reset login failures", zap.Error(err))
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return user, token, exp, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ *domain.Session) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
