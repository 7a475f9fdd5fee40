package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]HealthCheck
		status int
		want   string
		result map[string]string
	}{
		{
			name:   "no checks",
			status: http.StatusOK,
			want:   "healthy",
			result: map[string]string{},
		},
		{
			name:   "all healthy",
			checks: map[string]HealthCheck{"database": ok, "redis": ok},
			status: http.StatusOK,
			want:   "healthy",
			result: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:   "redis down",
			checks: map[string]HealthCheck{"database": ok, "redis": down},
			status: http.StatusServiceUnavailable,
			want:   "unhealthy",
			result: map[string]string{"database": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(NewBaseHandler(nil), tt.checks)
			assert.False(t, h.startTime.IsZero())

			router := gin.New()
			router.GET("/health", h.Health)
			w := serve(router, http.MethodGet, "/health", "")

			assert.Equal(t, tt.status, w.Code)
			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, "v2", resp.Version)
			assert.NotEmpty(t, resp.Uptime)
			assert.Equal(t, tt.result, resp.Checks)
		})
	}
}
