// Package app assembles the HTTP server from configuration and the
// infrastructure opened by the entrypoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/everytoolsapi/backend/docs"
	"github.com/everytoolsapi/backend/internal/application/requestlog"
	"github.com/everytoolsapi/backend/internal/application/tools"
	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"github.com/everytoolsapi/backend/internal/infrastructure/cache"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/persistence"
	"github.com/everytoolsapi/backend/internal/infrastructure/ratelimit"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/everytoolsapi/backend/internal/interfaces/http/handler"
	"github.com/everytoolsapi/backend/internal/interfaces/http/middleware"
	"github.com/everytoolsapi/backend/internal/interfaces/http/router"
	"github.com/everytoolsapi/backend/web"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Page routes outside the versioned API
const (
	indexLimit  = "120/minute"
	statusLimit = "2/second;120/minute"
	loginLimit  = "5/minute;30/hour"
	pageTTL     = 24 * time.Hour
	statusTTL   = time.Second
)

// Options carries the configuration and the connections opened by the
// entrypoint. DB, Redis, Metrics, Meter and Assets are optional.
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *persistence.Database
	Redis    *redis.Client
	Metrics  *telemetry.Metrics
	Meter    metric.Meter
	Assets   *web.Assets
	Registry *endpoint.Registry
	// Tools overrides the backends built from Config.Tools, for tests
	Tools *tools.Dependencies
}

// App is the assembled HTTP application
type App struct {
	engine  *gin.Engine
	logger  *zap.Logger
	closers []func() error
}

// New wires the services, middleware and routes
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = endpoint.Default()
	}
	assets := opts.Assets
	if assets == nil {
		loaded, err := web.Load(cfg.Web)
		if err != nil {
			return nil, fmt.Errorf("load web assets: %w", err)
		}
		assets = loaded
	}

	a := &App{logger: l}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	limiter, err := a.rateLimiter(cfg, opts.Redis)
	if err != nil {
		return nil, err
	}
	store, err := a.cacheStore(cfg, opts.Redis)
	if err != nil {
		return nil, err
	}

	var repo *persistence.RequestLogRepository
	var tracker *requestlog.Tracker
	if opts.DB != nil {
		repo = persistence.NewRequestLogRepository(opts.DB.DB)
	}
	if repo != nil && cfg.RequestLog.Enabled {
		tracker = requestlog.NewTracker(repo, opts.Metrics, l)
	} else {
		tracker = requestlog.NewTracker(nil, opts.Metrics, l)
	}

	deps := opts.Tools
	if deps == nil {
		built, closers := buildTools(cfg, l, opts.Metrics)
		a.closers = append(a.closers, closers...)
		deps = &built
	}
	deps.Metrics = opts.Metrics
	deps.Logger = l
	svc := tools.NewService(*deps)
	if missing := svc.Unhandled(registry); len(missing) > 0 {
		l.Warn("Endpoints without a handler", zap.Strings("endpoints", missing))
	}

	base := handler.NewBaseHandler(assets)
	pages := handler.NewPageHandler(base, assets, registry, tracker, cfg.Web.DocsURL)
	guard := &router.Guard{
		Limiter:  limiter,
		Cache:    store,
		Metrics:  opts.Metrics,
		Logger:   l,
		OnDenied: base.RenderError,
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	middleware.SetupValidator()

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	skip := []string{"/health", metricsPath}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(l, logger.WithSkipPaths(skip...)),
		logger.Recovery(l, pages.Panic),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   skip,
		}),
		middleware.SpanAnnotator(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Metrics:   opts.Metrics,
			Meter:     opts.Meter,
			SkipPaths: skip,
		}),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:          cfg.Profiling.Enabled,
			SkipPathPrefixes: []string{"/swagger", "/static"},
		}),
		middleware.Secure(security),
	)
	if cfg.HTTP.Compression {
		engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})))
	}
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(apiOnly(middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP))))

	engine.NoRoute(pages.NoRoute)
	engine.NoMethod(pages.NoMethod)

	(&router.PageRoutes{
		Guard: guard,
		Routes: []router.PageRoute{
			{Method: http.MethodGet, Path: "/", Scope: "index", RateLimit: indexLimit, CacheTTL: pageTTL, Handler: pages.Index},
			{Method: http.MethodGet, Path: "/docs", Scope: "docs", RateLimit: indexLimit, CacheTTL: pageTTL, Handler: pages.Docs},
			{Method: http.MethodGet, Path: "/api/status", Scope: "status", RateLimit: statusLimit, CacheTTL: statusTTL, Handler: pages.Status},
		},
	}).RegisterRoutes(&engine.RouterGroup)
	engine.GET("/favicon.ico", pages.Favicon)
	engine.StaticFS("/static", pages.StaticFS())

	system := handler.NewSystemHandler(base, healthChecks(opts.DB, opts.Redis))
	engine.GET("/health", system.Health)

	if opts.Metrics != nil && cfg.Metrics.Enabled {
		engine.GET(metricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	adminEnabled := cfg.Auth.AdminEnabled() && repo != nil
	if cfg.Swagger.Enabled {
		info := docs.DefaultInfo()
		info.Admin = adminEnabled
		doc, err := docs.Build(registry, info)
		if err != nil {
			return nil, fmt.Errorf("build openapi document: %w", err)
		}
		docs.Register(doc)
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    cfg.Swagger.Enabled,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	r := router.NewRouter(engine)

	catalog := handler.NewCatalogHandler(base, registry)
	r.Register(router.NewDomainGroup("catalog", "").
		Use(middleware.APIVersion()).
		GET("/endpoints", catalog.List))

	if adminEnabled {
		adminGroup, err := a.adminRoutes(cfg, base, guard, repo, opts.Redis)
		if err != nil {
			return nil, err
		}
		r.Register(adminGroup)
	} else if cfg.Auth.AdminEnabled() {
		l.Warn("Admin API disabled, the request log database is not available")
	}

	r.Register(&router.ToolRoutes{
		Registry: registry,
		Handlers: handler.NewToolHandler(base, svc, tracker),
		Guard:    guard,
	})
	r.Setup()

	a.engine = engine
	ok = true
	return a, nil
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.engine
}

// Engine returns the gin engine
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// Close releases the limiter, the cache store and the tool backends
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) rateLimiter(cfg *config.Config, client *redis.Client) (ratelimit.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		a.logger.Info("Rate limiting disabled")
		return nil, nil
	}
	limiter, err := ratelimit.New(cfg.RateLimit.Backend, client, cfg.RateLimit.KeyPrefix, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, limiter.Close)
	return limiter, nil
}

func (a *App) cacheStore(cfg *config.Config, client *redis.Client) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		a.logger.Info("Response cache disabled")
		return nil, nil
	}
	factory := cache.NewStoreFactory(client,
		cache.WithLogger(a.logger),
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
	)
	store, err := factory.CreateStore(cfg.Cache.Backend)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *App) adminRoutes(
	cfg *config.Config,
	base handler.BaseHandler,
	guard *router.Guard,
	repo *persistence.RequestLogRepository,
	client *redis.Client,
) (*router.DomainGroup, error) {
	var blacklist auth.TokenBlacklist
	if client != nil {
		blacklist = auth.NewRedisTokenBlacklist(client, "everytools:revoked:")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	jwtService := auth.NewJWTService(cfg.Auth)
	service := requestlog.NewAdminService(
		repo,
		auth.NewAdminAuthenticator(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash),
		jwtService,
		blacklist,
		a.logger,
	)
	admin := handler.NewAdminHandler(base, service)

	limitLogin, err := guard.RateLimit("admin/login", loginLimit)
	if err != nil {
		return nil, err
	}

	group := router.NewDomainGroup("admin", "/admin").Use(middleware.APIVersion())
	group.POST("/login", limitLogin, admin.Login)
	group.Group("admin-protected", "").
		Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			Validator: jwtService,
			Blacklist: blacklist,
			Logger:    a.logger,
		})).
		POST("/logout", admin.Logout).
		GET("/requests/stats", admin.Stats).
		GET("/requests/:id", admin.Request)
	return group, nil
}

func healthChecks(db *persistence.Database, client *redis.Client) map[string]handler.HealthCheck {
	checks := make(map[string]handler.HealthCheck)
	if db != nil {
		checks["database"] = db.Ping
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

// apiOnly runs mw for requests under /api/ and skips it elsewhere
func apiOnly(mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			mw(c)
			return
		}
		c.Next()
	}
}
