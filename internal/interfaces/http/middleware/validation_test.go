package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Username string `json:"username" binding:"required"`
	Top      int    `form:"top" binding:"max=100"`
	ID       int64  `uri:"id" binding:"min=1"`
	Hidden   string `json:"-" binding:"required"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(taggedRequest{Top: 500})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "top")
	assert.Contains(t, fields, "id")
}
