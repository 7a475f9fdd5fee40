package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAPIVersion(t *testing.T) {
	router := gin.New()
	router.GET("/api/:version/parser/url", APIVersion(), okHandler)

	tests := []struct {
		version string
		status  int
		message string
	}{
		{"v2", http.StatusOK, ""},
		{"v1", http.StatusBadRequest, shared.ErrOutdatedAPIVersion.Message},
		{"v3", http.StatusBadRequest, shared.ErrInvalidAPIVersion.Message},
		{"latest", http.StatusBadRequest, shared.ErrInvalidAPIVersion.Message},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/"+tt.version+"/parser/url", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Contains(t, w.Body.String(), tt.message)
				assert.Contains(t, w.Body.String(), `"status":false`)
			}
		})
	}
}
