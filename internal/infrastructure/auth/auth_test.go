package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService(t *testing.T) (*JWTService, *time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewJWTService(config.AuthConfig{
		JWTSecret:       strings.Repeat("k", 32),
		JWTIssuer:       "everytoolsapi",
		TokenExpiration: 30 * time.Minute,
	})
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestJWTService(t *testing.T) {
	t.Run("issues and validates", func(t *testing.T) {
		svc, _ := newTestJWTService(t)
		tok, err := svc.Issue("admin")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)

		claims, err := svc.Validate(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.NotEmpty(t, claims.ID)
		assert.Equal(t, 30*time.Minute, claims.ExpiresIn(svc.now()))
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		svc, now := newTestJWTService(t)
		tok, err := svc.Issue("admin")
		require.NoError(t, err)

		*now = now.Add(31 * time.Minute)
		_, err = svc.Validate(tok.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		svc, _ := newTestJWTService(t)
		other := NewJWTService(config.AuthConfig{JWTSecret: strings.Repeat("x", 32), JWTIssuer: "everytoolsapi"})
		tok, err := other.Issue("admin")
		require.NoError(t, err)

		_, err = svc.Validate(tok.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other signing methods", func(t *testing.T) {
		svc, _ := newTestJWTService(t)
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: roleAdmin}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc, _ := newTestJWTService(t)
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAdminAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewAdminAuthenticator("admin", string(hash))

	assert.NoError(t, a.Authenticate("admin", "s3cret"))
	assert.ErrorIs(t, a.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Authenticate("root", "s3cret"), ErrInvalidCredentials)

	disabled := NewAdminAuthenticator("", "")
	assert.ErrorIs(t, disabled.Authenticate("", ""), ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, NewAdminAuthenticator("u", h).Authenticate("u", "pw"))
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewInMemoryTokenBlacklist()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, b.Revoke(ctx, "jti-2", 0))

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = b.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	now = now.Add(time.Minute)
	revoked, _ = b.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}
