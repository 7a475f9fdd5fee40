package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func TestCORS(t *testing.T) {
	t.Run("default allows any origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.GET("/api/status", okHandler)

		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderRetryAfter)
		assert.Empty(t, w.Header().Get("Vary"))
	})

	t.Run("answers preflight with 204", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(DefaultCORSConfig()))
		router.GET("/api/status", okHandler)

		req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	})

	t.Run("whitelist echoes the matching origin", func(t *testing.T) {
		cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"https://a.example", "https://b.example"}})
		router := gin.New()
		router.Use(CORS(cfg))
		router.GET("/api/status", okHandler)

		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "https://b.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://b.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))

		req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("config overrides keep defaults for unset fields", func(t *testing.T) {
		cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowMethods: []string{"GET"}})
		assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
		assert.Equal(t, []string{"GET"}, cfg.AllowMethods)
		assert.NotEmpty(t, cfg.AllowHeaders)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	var ctxID string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString(logger.GinRequestIDKey)
		ctxID = logger.GetRequestID(c.Request.Context())
		_, hasStart := c.Get(StartTimeKey)
		assert.True(t, hasStart)
		c.Status(http.StatusOK)
	})

	t.Run("generates a UUID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
		assert.Equal(t, id, ctxID)
	})

	t.Run("reuses a well-formed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "trace-abc_123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "trace-abc_123", w.Header().Get(HeaderRequestID))
	})

	t.Run("replaces malformed or oversized ids", func(t *testing.T) {
		for _, bad := range []string{"has space", "<script>", strings.Repeat("a", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(HeaderRequestID, bad)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.NotEqual(t, bad, w.Header().Get(HeaderRequestID))
		}
	})
}

func TestSecure(t *testing.T) {
	t.Run("sets headers and the page CSP", func(t *testing.T) {
		router := gin.New()
		router.Use(Secure(DefaultSecurityConfig()))
		router.GET("/", okHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		csp := w.Header().Get("Content-Security-Policy")
		assert.Contains(t, csp, "default-src 'self' https://cdnjs.cloudflare.com")
		assert.Contains(t, csp, "style-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com")
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS when enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		router := gin.New()
		router.Use(Secure(cfg))
		router.GET("/", okHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	})
}
