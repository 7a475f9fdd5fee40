package middleware

import (
	"net/http"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ErrRequestTooLarge is returned when the body exceeds the configured limit
var ErrRequestTooLarge = shared.NewDomainErrorWithStatus(
	http.StatusRequestEntityTooLarge, shared.CodeInvalidInput, "The request body is too large.")

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			AbortWithEnvelope(c, ErrRequestTooLarge)
			return
		}

		// Wrap the body with a limited reader for streaming requests
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
