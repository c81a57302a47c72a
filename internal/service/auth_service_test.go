package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/sla-dashboard/internal/auth"
	"github.com/spec-kit/sla-dashboard/internal/config"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/errorutil"
)

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("s3nha", bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "secret",
		AccessTokenTTLMinutes: 10,
		Username:              "admin",
		PasswordHash:          hash,
	})
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "admin", "s3nha")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, _, err = svc.Login(ctx, "admin", "errada")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, err = svc.Login(ctx, "outro", "s3nha")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{JWTSecret: "secret", Username: "admin"})

	_, _, err := svc.Login(context.Background(), "admin", "x")
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}
