package middleware

import (
	"errors"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// VersionParam is the route parameter holding the API version
const VersionParam = "version"

// APIVersion rejects requests whose :version segment is not the latest API
// version with a 400 envelope
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := endpoint.CheckVersion(c.Param(VersionParam)); err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				de = shared.ErrInvalidAPIVersion
			}
			AbortWithEnvelope(c, de)
			return
		}
		c.Next()
	}
}
