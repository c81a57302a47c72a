package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/sla-dashboard/internal/auth"
	"github.com/spec-kit/sla-dashboard/internal/config"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/errorutil"
)

// AuthService authenticates the dashboard operator configured in the environment.
type AuthService struct {
	operator auth.Operator
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		operator: auth.Operator{Username: cfg.Username, PasswordHash: cfg.PasswordHash},
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Login checks the operator credentials and issues an access token.
func (s *AuthService) Login(_ context.Context, username, password string) (string, time.Time, error) {
	if err := s.operator.Verify(username, password); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotConfigured) {
			return "", time.Time{}, apperrors.NewServiceUnavailable("operator login not configured", err)
		}
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.tokenMgr.GenerateToken(s.operator.Username)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
