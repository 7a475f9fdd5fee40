package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/app"
	"github.com/everytoolsapi/backend/internal/application/tools"
	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/everytoolsapi/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminPassword = "integration-s3cret"

// APITestServer is the assembled application backed by PostgreSQL
type APITestServer struct {
	DB  *TestDB
	App *app.App
}

func NewAPITestServer(t *testing.T) *APITestServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	gin.SetMode(gin.TestMode)

	db := NewSharedTestDB(t)
	db.CleanTables()

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	cfg := &config.Config{
		App:        config.AppConfig{Name: "everytoolsapi", Env: "test"},
		HTTP:       config.HTTPConfig{MaxBodySize: 1 << 20},
		Cache:      config.CacheConfig{Enabled: true, Backend: "memory", MaxEntries: 1000},
		RateLimit:  config.RateLimitConfig{Enabled: true, Backend: "memory"},
		RequestLog: config.RequestLogConfig{Enabled: true},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Auth: config.AuthConfig{
			JWTSecret:         "integration-secret-key-at-least-32-chars",
			JWTIssuer:         "everytoolsapi-integration",
			TokenExpiration:   time.Hour,
			AdminUsername:     "admin",
			AdminPasswordHash: hash,
		},
	}

	a, err := app.New(app.Options{
		Config:  cfg,
		Logger:  zap.NewNop(),
		DB:      db.Database,
		Metrics: telemetry.NewMetrics(),
		Tools:   &tools.Dependencies{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &APITestServer{DB: db, App: a}
}

// Request sends a request from the given client address
func (s *APITestServer) Request(method, target, body, clientIP string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = clientIP + ":40000"
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.App.Handler().ServeHTTP(w, req)
	return w
}

func (s *APITestServer) login(t *testing.T) http.Header {
	t.Helper()
	w := s.Request(http.MethodPost, "/api/v2/admin/login",
		fmt.Sprintf(`{"username":"admin","password":%q}`, adminPassword), "192.0.2.250", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token auth.Token
	require.NoError(t, json.Unmarshal(testutil.DecodeEnvelope(t, w.Body.Bytes()).Response, &token))
	return http.Header{"Authorization": {"Bearer " + token.AccessToken}}
}

func TestAPI_RequestsAreLogged(t *testing.T) {
	s := NewAPITestServer(t)

	w := s.Request(http.MethodGet, "/api/v2/parser/sec-to-hms?query=3661", "", "192.0.2.10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := testutil.DecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.API.Status)
	assert.JSONEq(t, `{"hmsString":"01:01:01"}`, string(env.Response))

	w = s.Request(http.MethodGet, "/api/v2/parser/sec-to-hms?query=abc", "", "192.0.2.10", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.Request(http.MethodGet, "/api/status", "", "192.0.2.11", nil)
	require.Equal(t, http.StatusOK, w.Code)

	bearer := s.login(t)
	w = s.Request(http.MethodGet, "/api/v2/admin/requests/stats?since=1h&top=5", "", "192.0.2.250", bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		TotalRequests int64            `json:"totalRequests"`
		UniqueOrigins int64            `json:"uniqueOrigins"`
		ByStatus      map[string]int64 `json:"byStatus"`
		SuccessRate   float64          `json:"successRate"`
		TopRoutes     []struct {
			Route string `json:"route"`
			Count int64  `json:"count"`
		} `json:"topRoutes"`
	}
	require.NoError(t, json.Unmarshal(testutil.DecodeEnvelope(t, w.Body.Bytes()).Response, &stats))
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(2), stats.UniqueOrigins)
	assert.Equal(t, int64(2), stats.ByStatus["success"])
	assert.Equal(t, int64(1), stats.ByStatus["exception"])
	require.NotEmpty(t, stats.TopRoutes)
	assert.Equal(t, "/api/v2/parser/sec-to-hms", stats.TopRoutes[0].Route)
	assert.Equal(t, int64(2), stats.TopRoutes[0].Count)
}

func TestAPI_AdminRequestDetail(t *testing.T) {
	s := NewAPITestServer(t)

	w := s.Request(http.MethodGet, "/api/v2/parser/sec-to-hms?query=-5", "", "192.0.2.20", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var id int64
	require.NoError(t, s.DB.Database.DB.Raw("SELECT MAX(id) FROM api_requests").Scan(&id).Error)
	require.NotZero(t, id)

	bearer := s.login(t)
	w = s.Request(http.MethodGet, fmt.Sprintf("/api/v2/admin/requests/%d", id), "", "192.0.2.250", bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var detail struct {
		Route      string                     `json:"route"`
		Params     string                     `json:"params"`
		OriginIP   string                     `json:"originIp"`
		Logs       []struct{ Status string }  `json:"logs"`
		Exceptions []struct{ Message string } `json:"exceptions"`
	}
	require.NoError(t, json.Unmarshal(testutil.DecodeEnvelope(t, w.Body.Bytes()).Response, &detail))
	assert.Equal(t, "/api/v2/parser/sec-to-hms", detail.Route)
	assert.Contains(t, detail.Params, "query")
	assert.Equal(t, "192.0.2.20", detail.OriginIP)
	require.Len(t, detail.Logs, 2)
	assert.Equal(t, "exception", detail.Logs[1].Status)
	require.Len(t, detail.Exceptions, 1)
	assert.NotEmpty(t, detail.Exceptions[0].Message)

	w = s.Request(http.MethodGet, "/api/v2/admin/requests/999999", "", "192.0.2.250", bearer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_AdminLogoutRevokesToken(t *testing.T) {
	s := NewAPITestServer(t)
	bearer := s.login(t)

	w := s.Request(http.MethodPost, "/api/v2/admin/logout", "", "192.0.2.250", bearer)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.Request(http.MethodGet, "/api/v2/admin/requests/stats", "", "192.0.2.250", bearer)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	testutil.AssertErrorResponse(t, w, "The access token has been revoked.")
}

func TestAPI_RateLimitIsPerClient(t *testing.T) {
	s := NewAPITestServer(t)

	// status allows 2 requests per second and the limiter runs before the cache
	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, s.Request(http.MethodGet, "/api/status", "", "192.0.2.30", nil).Code)
	}
	other := s.Request(http.MethodGet, "/api/status", "", "192.0.2.31", nil)

	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusOK, other.Code)
}
