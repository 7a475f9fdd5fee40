package handler

import (
	"net/http"
	"strings"
	"testing"

	apprequestlog "github.com/everytoolsapi/backend/internal/application/requestlog"
	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newPageRouter(t *testing.T, tracker *apprequestlog.Tracker, docsURL string) (*gin.Engine, *PageHandler) {
	t.Helper()
	registry, err := endpoint.NewRegistry(
		secToHMS,
		endpoint.Endpoint{Category: endpoint.CategoryTools, Name: "ip", RateLimit: "10/second", Ready: true},
		endpoint.Endpoint{Category: endpoint.CategoryScraper, Name: "google-search", Ready: false},
	)
	require.NoError(t, err)
	h := NewPageHandler(NewBaseHandler(testAssets), testAssets, registry, tracker, docsURL)

	router := gin.New()
	router.Use(logger.Recovery(zaptest.NewLogger(t), h.Panic))
	router.HandleMethodNotAllowed = true
	router.NoRoute(h.NoRoute)
	router.NoMethod(h.NoMethod)
	router.GET("/", h.Index)
	router.GET("/docs", h.Docs)
	router.GET("/api/status", h.Status)
	router.GET("/favicon.ico", h.Favicon)
	router.StaticFS("/static", h.StaticFS())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	return router, h
}

func TestPageHandler_Index(t *testing.T) {
	router, _ := newPageRouter(t, nil, "")
	w := serve(router, http.MethodGet, "/", "text/html")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "/api/v2/parser/sec-to-hms")
	assert.Contains(t, body, "/api/v2/tools/ip")
	assert.Contains(t, body, "10/second")
	assert.Contains(t, body, testAssets.FaviconBase64)
	assert.Less(t, strings.Index(body, "parser/sec-to-hms"), strings.Index(body, "tools/ip"), "categories are ordered")
}

func TestPageHandler_Docs(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		router, _ := newPageRouter(t, nil, "")
		w := serve(router, http.MethodGet, "/docs", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, DefaultDocsURL, w.Header().Get("Location"))
	})

	t.Run("configured", func(t *testing.T) {
		router, _ := newPageRouter(t, nil, "https://docs.example.com")
		w := serve(router, http.MethodGet, "/docs", "")
		assert.Equal(t, "https://docs.example.com", w.Header().Get("Location"))
	})
}

func TestPageHandler_Status(t *testing.T) {
	repo := new(MockRequestLog)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("MarkSuccess", mock.Anything, int64(7)).Return(nil).Once()

	router, _ := newPageRouter(t, apprequestlog.NewTracker(repo, nil, zaptest.NewLogger(t)), "")
	w := serve(router, http.MethodGet, "/api/status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	api, resp := decodeEnvelope(t, w)
	assert.True(t, api.Status)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "API server is successfully running.", resp["message"])
	repo.AssertExpectations(t)
}

func TestPageHandler_Assets(t *testing.T) {
	router, _ := newPageRouter(t, nil, "")

	w := serve(router, http.MethodGet, "/favicon.ico", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/x-icon", w.Header().Get("Content-Type"))
	assert.Equal(t, testAssets.Favicon, w.Body.Bytes())

	w = serve(router, http.MethodGet, "/static/css/style.css", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestPageHandler_Errors(t *testing.T) {
	router, _ := newPageRouter(t, nil, "")

	tests := []struct {
		name   string
		method string
		target string
		status int
		phrase string
	}{
		{"unknown route", http.MethodGet, "/nowhere", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodPost, "/docs", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"panic", http.MethodGet, "/panic", http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name+" as HTML", func(t *testing.T) {
			w := serve(router, tt.method, tt.target, "text/html")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.phrase)
		})
		t.Run(tt.name+" as JSON", func(t *testing.T) {
			w := serve(router, tt.method, tt.target, "application/json")
			assert.Equal(t, tt.status, w.Code)
			api, _ := decodeEnvelope(t, w)
			assert.False(t, api.Status)
			assert.NotNil(t, api.ErrorMessage)
		})
	}
}
