package middleware

import (
	"context"
	"strings"

	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPathPrefixes get no labels, e.g. /swagger and /static.
	SkipPathPrefixes []string
}

// Profiling runs the rest of the chain under Pyroscope labels naming the
// endpoint and the HTTP method, so CPU profiles can be sliced per tool.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithEndpointLabels(c.Request.Context(), profilingEndpoint(c.FullPath()), c.Request.Method,
			func(ctx context.Context) {
				c.Request = c.Request.WithContext(ctx)
				c.Next()
			})
	}
}

// profilingEndpoint derives a low-cardinality label from the route pattern.
// "/api/:version/parser/url" -> "parser/url", "/" -> "/".
func profilingEndpoint(route string) string {
	if route == "" {
		return "unknown"
	}
	if rest, ok := strings.CutPrefix(route, "/api/:"+VersionParam+"/"); ok {
		return rest
	}
	return route
}
