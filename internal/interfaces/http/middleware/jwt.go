package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenValidator validates a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Validator is required for token validation
	Validator TokenValidator
	// Blacklist is optional for checking revoked tokens
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

var (
	errMissingToken = shared.NewDomainErrorWithStatus(http.StatusUnauthorized, shared.CodeUnauthorized, "Missing or malformed authorization header.")
	errBadToken     = shared.NewDomainErrorWithStatus(http.StatusUnauthorized, shared.CodeUnauthorized, "The access token is invalid.")
	errExpiredToken = shared.NewDomainErrorWithStatus(http.StatusUnauthorized, shared.CodeUnauthorized, "The access token has expired.")
	errRevokedToken = shared.NewDomainErrorWithStatus(http.StatusUnauthorized, shared.CodeUnauthorized, "The access token has been revoked.")
)

// JWTAuth requires a valid, unrevoked bearer token. Blacklist lookups that
// fail let the request through.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortAuth(c, cfg, errMissingToken, nil)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if tokenString == "" {
			abortAuth(c, cfg, errMissingToken, nil)
			return
		}

		claims, err := cfg.Validator.Validate(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortAuth(c, cfg, errExpiredToken, err)
			} else {
				abortAuth(c, cfg, errBadToken, err)
			}
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				abortAuth(c, cfg, errRevokedToken, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUsernameKey, claims.Username)
		c.Next()
	}
}

func abortAuth(c *gin.Context, cfg JWTMiddlewareConfig, de *shared.DomainError, cause error) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", de.Message),
		zap.NamedError("cause", cause),
	)
	AbortWithEnvelope(c, de)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
