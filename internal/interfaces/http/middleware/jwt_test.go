package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.AuthConfig{
		JWTSecret:       "test-secret-key-at-least-32-chars",
		JWTIssuer:       "test-issuer",
		TokenExpiration: 15 * time.Minute,
	})
}

func newJWTRouter(jwtService *auth.JWTService, blacklist auth.TokenBlacklist) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{Validator: jwtService, Blacklist: blacklist}))
	router.GET("/admin", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(JWTUsernameKey))
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	jwtService := newTestJWTService()
	token, err := jwtService.Issue("admin")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		w := httptest.NewRecorder()
		newJWTRouter(jwtService, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		newJWTRouter(jwtService, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Missing or malformed authorization header.")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(AuthHeaderKey, "Basic YWRtaW46cGFzcw==")
		w := httptest.NewRecorder()
		newJWTRouter(jwtService, nil).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.AuthConfig{JWTSecret: "another-secret-key-of-32-characters", JWTIssuer: "test-issuer"})
		foreign, err := other.Issue("admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+foreign.AccessToken)
		w := httptest.NewRecorder()
		newJWTRouter(jwtService, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "The access token is invalid.")
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := jwtService.Validate(token.AccessToken)
		require.NoError(t, err)
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		w := httptest.NewRecorder()
		newJWTRouter(jwtService, blacklist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})
}

func TestGetJWTClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))

	claims := &auth.Claims{Username: "admin"}
	c.Set(JWTClaimsKey, claims)
	assert.Same(t, claims, GetJWTClaims(c))
}
