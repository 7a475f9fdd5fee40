package router

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/infrastructure/cache"
	"github.com/everytoolsapi/backend/internal/infrastructure/ratelimit"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/everytoolsapi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guard builds the per-route rate limit and response cache middleware
type Guard struct {
	Limiter ratelimit.Limiter
	Cache   cache.Store
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
	// OnDenied renders 429 responses
	OnDenied middleware.ErrorRenderer
}

// RateLimit returns the rate limit middleware for a "10/second;100/day" spec
func (g *Guard) RateLimit(scope, spec string) (gin.HandlerFunc, error) {
	var limits []endpoint.Limit
	if spec != "" {
		parsed, err := endpoint.ParseRateLimit(spec)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", scope, err)
		}
		limits = parsed
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:  g.Limiter,
		Limits:   limits,
		Scope:    scope,
		Metrics:  g.Metrics,
		Logger:   g.Logger,
		OnDenied: g.OnDenied,
	}), nil
}

// ResponseCache returns the response cache middleware, or nil when ttl is not
// positive or no store is configured. varyByCaller keys entries by client too.
func (g *Guard) ResponseCache(scope string, ttl time.Duration, varyByCaller bool) gin.HandlerFunc {
	if ttl <= 0 || g.Cache == nil {
		return nil
	}
	return middleware.ResponseCache(middleware.ResponseCacheConfig{
		Store:        g.Cache,
		TTL:          ttl,
		Scope:        scope,
		VaryByCaller: varyByCaller,
		Metrics:      g.Metrics,
		Logger:       g.Logger,
	})
}

// ToolHandlerFactory builds the handler of one catalogue endpoint
type ToolHandlerFactory interface {
	Handle(ep endpoint.Endpoint) gin.HandlerFunc
}

// ToolRoutes registers one route per catalogue endpoint. Each route runs its
// rate limit, the version check and its response cache before the tool.
type ToolRoutes struct {
	Registry *endpoint.Registry
	Handlers ToolHandlerFactory
	Guard    *Guard
}

// RegisterRoutes implements RouteRegistrar. It panics on an invalid rate
// limit, which NewRegistry already rejects.
func (t *ToolRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	for _, ep := range t.Registry.All() {
		limit, err := t.Guard.RateLimit(ep.Path(), ep.RateLimit)
		if err != nil {
			panic(err)
		}
		handlers := []gin.HandlerFunc{limit, middleware.APIVersion()}
		if cached := t.Guard.ResponseCache(ep.Path(), ep.CacheTTL, ep.CallerScoped); cached != nil {
			handlers = append(handlers, cached)
		}
		handlers = append(handlers, t.Handlers.Handle(ep))

		methods := ep.Methods
		if len(methods) == 0 {
			methods = []string{http.MethodGet}
		}
		for _, m := range methods {
			rg.Handle(strings.ToUpper(m), "/"+ep.Path(), handlers...)
		}
	}
}

// PageRoute is a route outside the versioned API with its own limits
type PageRoute struct {
	Method    string
	Path      string
	Scope     string
	RateLimit string
	CacheTTL  time.Duration
	Handler   gin.HandlerFunc
}

// PageRoutes registers rate limited and cached routes on the engine root
type PageRoutes struct {
	Guard  *Guard
	Routes []PageRoute
}

// RegisterRoutes implements RouteRegistrar
func (p *PageRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	for _, r := range p.Routes {
		limit, err := p.Guard.RateLimit(r.Scope, r.RateLimit)
		if err != nil {
			panic(err)
		}
		handlers := []gin.HandlerFunc{limit}
		if cached := p.Guard.ResponseCache(r.Scope, r.CacheTTL, false); cached != nil {
			handlers = append(handlers, cached)
		}
		rg.Handle(r.Method, r.Path, append(handlers, r.Handler)...)
	}
}
