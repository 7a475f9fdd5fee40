package requestlog

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/requestlog"
	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockRepository is a mock implementation of requestlog.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *requestlog.Request) error {
	args := m.Called(ctx, req)
	if args.Error(0) == nil {
		req.ID = 42
	}
	return args.Error(0)
}

func (m *MockRepository) MarkSuccess(ctx context.Context, requestID int64) error {
	return m.Called(ctx, requestID).Error(0)
}

func (m *MockRepository) MarkException(ctx context.Context, requestID int64, message string) error {
	return m.Called(ctx, requestID, message).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, requestID int64) (*requestlog.Request, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestlog.Request), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context, since time.Time, topRoutes int) (*requestlog.Stats, error) {
	args := m.Called(ctx, since, topRoutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestlog.Stats), args.Error(1)
}

func TestTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("records the lifecycle", func(t *testing.T) {
		repo := new(MockRepository)
		tracker := NewTracker(repo, nil, zaptest.NewLogger(t))

		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *requestlog.Request) bool {
			return r.Route == "parser/url" && r.Params == "?query=x" && r.OriginIP == "203.0.113.1"
		})).Return(nil)
		repo.On("MarkSuccess", mock.Anything, int64(42)).Return(nil)
		repo.On("MarkException", mock.Anything, int64(42), "boom").Return(nil)

		id := tracker.Start(ctx, "parser/url", url.Values{"query": {"x"}}, "203.0.113.1")
		assert.Equal(t, int64(42), id)
		tracker.Succeed(ctx, id)
		tracker.Fail(ctx, id, "boom")
		repo.AssertExpectations(t)
	})

	t.Run("write failures are swallowed and counted", func(t *testing.T) {
		repo := new(MockRepository)
		metrics := telemetry.NewMetrics()
		tracker := NewTracker(repo, metrics, zaptest.NewLogger(t))

		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		id := tracker.Start(ctx, "tools/ip", nil, "")
		assert.Zero(t, id)
		tracker.Succeed(ctx, id)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestLogErrors))
		repo.AssertNotCalled(t, "MarkSuccess", mock.Anything, mock.Anything)
	})

	t.Run("a cancelled request context still writes", func(t *testing.T) {
		repo := new(MockRepository)
		tracker := NewTracker(repo, nil, zaptest.NewLogger(t))
		repo.On("MarkException", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), int64(7), "late").Return(nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		tracker.Fail(cancelled, 7, "late")
		repo.AssertExpectations(t)
	})

	t.Run("disabled tracker", func(t *testing.T) {
		tracker := NewTracker(nil, nil, nil)
		assert.False(t, tracker.Enabled())
		assert.Zero(t, tracker.Start(ctx, "tools/ip", nil, ""))
		assert.NotPanics(t, func() { tracker.Fail(ctx, 1, "x") })
	})
}

func newAdminService(t *testing.T, repo requestlog.Repository) (*AdminService, *auth.InMemoryTokenBlacklist) {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAdminService(
		repo,
		auth.NewAdminAuthenticator("admin", hash),
		auth.NewJWTService(config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", JWTIssuer: "test"}),
		blacklist,
		zaptest.NewLogger(t),
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, blacklist
}

func TestAdminService_Login(t *testing.T) {
	svc, _ := newAdminService(t, new(MockRepository))

	token, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminService_Logout(t *testing.T) {
	svc, blacklist := newAdminService(t, new(MockRepository))
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)),
	}}

	require.NoError(t, svc.Logout(context.Background(), claims))
	revoked, err := blacklist.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAdminService_Stats(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newAdminService(t, repo)
	ctx := context.Background()

	stats := &requestlog.Stats{ByStatus: map[requestlog.Status]int64{
		requestlog.StatusSuccess:   3,
		requestlog.StatusException: 1,
	}}

	t.Run("defaults to the last day", func(t *testing.T) {
		repo.On("Stats", mock.Anything, time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC), defaultTopRoutes).Return(stats, nil).Once()
		out, err := svc.Stats(ctx, StatsRequest{})
		require.NoError(t, err)
		assert.InDelta(t, 0.75, out.SuccessRate, 1e-9)
	})

	t.Run("accepts a duration", func(t *testing.T) {
		repo.On("Stats", mock.Anything, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), 5).Return(stats, nil).Once()
		_, err := svc.Stats(ctx, StatsRequest{Since: "2h", Top: 5})
		require.NoError(t, err)
	})

	t.Run("accepts a timestamp", func(t *testing.T) {
		repo.On("Stats", mock.Anything, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), defaultTopRoutes).Return(stats, nil).Once()
		_, err := svc.Stats(ctx, StatsRequest{Since: "2024-01-01T00:00:00Z"})
		require.NoError(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.Stats(ctx, StatsRequest{Since: "yesterday"})
		assert.ErrorIs(t, err, ErrInvalidSince)
	})

	repo.AssertExpectations(t)
}

func TestAdminService_Request(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newAdminService(t, repo)

	repo.On("FindByID", mock.Anything, int64(1)).Return(&requestlog.Request{ID: 1, Route: "tools/ip"}, nil)
	repo.On("FindByID", mock.Anything, int64(2)).Return(nil, requestlog.ErrRequestNotFound)

	req, err := svc.Request(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "tools/ip", req.Route)

	_, err = svc.Request(context.Background(), 2)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
