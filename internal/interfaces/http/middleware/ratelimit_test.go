package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/ratelimit"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limits []endpoint.Limit) (ratelimit.Result, error) {
	args := m.Called(ctx, key, limits)
	return args.Get(0).(ratelimit.Result), args.Error(1)
}

func (m *MockLimiter) Close() error {
	return nil
}

func mustLimits(t *testing.T, spec string) []endpoint.Limit {
	t.Helper()
	limits, err := endpoint.ParseRateLimit(spec)
	require.NoError(t, err)
	return limits
}

func TestRateLimit(t *testing.T) {
	t.Run("denies the request after the window is exhausted", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter()
		defer limiter.Close()
		metrics := telemetry.NewMetrics()

		router := gin.New()
		router.GET("/api/v2/tools/ip", RateLimit(RateLimitConfig{
			Limiter: limiter,
			Limits:  mustLimits(t, "2/day"),
			Scope:   "tools/ip",
			Metrics: metrics,
		}), okHandler)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/tools/ip", nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "2", w.Header().Get(HeaderRateLimitLimit))
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/tools/ip", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get(HeaderRateLimitRemaining))
		assert.NotEmpty(t, w.Header().Get(HeaderRetryAfter))
		assert.Contains(t, w.Body.String(), shared.ErrRateLimited.Message)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("tools/ip", "2/day")))
	})

	t.Run("counts clients separately", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter()
		defer limiter.Close()

		router := gin.New()
		router.GET("/x", RateLimit(RateLimitConfig{Limiter: limiter, Limits: mustLimits(t, "1/day"), Scope: "x"}), okHandler)

		for _, ip := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.RemoteAddr = ip
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, ip)
		}
	})

	t.Run("uses the custom renderer and Retry-After", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		limiter := new(MockLimiter)
		limiter.On("Allow", mock.Anything, "192.0.2.1:scope", mock.Anything).Return(ratelimit.Result{
			Allowed: false,
			Limit:   endpoint.Limit{Count: 10, Window: time.Minute},
			ResetAt: now.Add(30 * time.Second),
		}, nil)

		var rendered *shared.DomainError
		router := gin.New()
		router.GET("/x", RateLimit(RateLimitConfig{
			Limiter: limiter,
			Limits:  mustLimits(t, "10/minute"),
			Scope:   "scope",
			Now:     func() time.Time { return now },
			OnDenied: func(c *gin.Context, err *shared.DomainError) {
				rendered = err
				c.AbortWithStatus(err.HTTPStatus())
			},
		}), okHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, shared.ErrRateLimited, rendered)
		assert.Equal(t, "31", w.Header().Get(HeaderRetryAfter))
		limiter.AssertExpectations(t)
	})

	t.Run("fails open when the limiter errors", func(t *testing.T) {
		limiter := new(MockLimiter)
		limiter.On("Allow", mock.Anything, mock.Anything, mock.Anything).
			Return(ratelimit.Result{}, errors.New("redis down"))

		router := gin.New()
		router.GET("/x", RateLimit(RateLimitConfig{Limiter: limiter, Limits: mustLimits(t, "1/day"), Scope: "x"}), okHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(HeaderRateLimitLimit))
	})

	t.Run("no limits is a pass-through", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", RateLimit(RateLimitConfig{Limiter: new(MockLimiter)}), okHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
