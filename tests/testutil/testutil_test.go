package testutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)
	db.Mock.ExpectExec(`DELETE FROM "api_requests"`).WillReturnError(errors.New("read only"))

	err := db.DB.Exec(`DELETE FROM "api_requests"`).Error
	assert.EqualError(t, err, "read only")
	db.ExpectationsWereMet(t)

	db.Mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	var one int
	require.NoError(t, db.DB.Raw(`SELECT 1`).Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestRunToolCases(t *testing.T) {
	base := handler.NewBaseHandler(nil)
	router := gin.New()
	router.GET("/ok", func(c *gin.Context) { base.Success(c, gin.H{"value": 42}) })
	router.GET("/bad", func(c *gin.Context) {
		base.Error(c, shared.NewDomainErrorWithStatus(http.StatusBadRequest, shared.CodeInvalidInput, "Bad input."))
	})

	RunToolCases(t, router, []ToolCase{
		{Name: "success", Target: "/ok", Response: `{"value":42}`},
		{Name: "error", Target: "/bad", Status: http.StatusBadRequest, Error: "Bad input."},
	})

	w := ServeTool(router, ToolCase{Target: "/bad", Header: http.Header{"Accept": {"text/html"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
