// Package middleware provides the gin middleware chain of the API server.
package middleware

import (
	"time"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// StartTimeKey holds the time the request entered the chain
const StartTimeKey = "request_start"

// ErrorRenderer writes err as the response and aborts the chain. The handler
// package provides one that renders the HTML error page for browsers.
type ErrorRenderer func(c *gin.Context, err *shared.DomainError)

// AbortWithEnvelope writes err as a JSON envelope
func AbortWithEnvelope(c *gin.Context, err *shared.DomainError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), dto.NewErrorEnvelope(err.Message, Elapsed(c)))
}

// Elapsed returns the time spent since RequestID saw the request, or zero
// when it did not run
func Elapsed(c *gin.Context) time.Duration {
	if v, ok := c.Get(StartTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			return time.Since(start)
		}
	}
	return 0
}

func rendererOrDefault(r ErrorRenderer) ErrorRenderer {
	if r == nil {
		return AbortWithEnvelope
	}
	return r
}
