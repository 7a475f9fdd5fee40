package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/everytoolsapi/backend/internal/app"
	"github.com/everytoolsapi/backend/internal/infrastructure/cache"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/migration"
	"github.com/everytoolsapi/backend/internal/infrastructure/persistence"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

//	@title			EveryToolsAPI
//	@version		v2
//	@description	Parsers, randomizers, scrapers and utility tools behind one JSON API.

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin access token. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFrom(cfg.App, cfg.Telemetry)

	// OpenTelemetry log export is teed next to the console core
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if cfg.Telemetry.LogsEnabled {
		log, err = logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer logger.Sync(log)

	log.Info("Starting EveryToolsAPI",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.App.Addr()),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	var meter metric.Meter
	if cfg.Telemetry.Enabled {
		meter = meterProvider.Meter(cfg.App.Name)
	}

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, cfg.App.Env, log)
	if err != nil {
		log.Warn("Profiler not started", zap.Error(err))
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics()
	}

	db := openDatabase(cfg, log, metrics)
	redisClient := openRedis(ctx, cfg, log)

	application, err := app.New(app.Options{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Redis:   redisClient,
		Metrics: metrics,
		Meter:   meter,
	})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           cfg.App.Addr(),
		Handler:        application.Handler(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := application.Close(); err != nil {
		log.Error("Error releasing application resources", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects the request log database. The server runs without
// request logging when the database is disabled or unreachable.
func openDatabase(cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) *persistence.Database {
	if !cfg.Database.Enabled {
		log.Info("Database disabled, request logging is off")
		return nil
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Error("Failed to connect to database, request logging is off", zap.Error(err))
		return nil
	}
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, 0, log); err != nil {
			log.Warn("Database tracing not registered", zap.Error(err))
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Error("Failed to get database handle", zap.Error(err))
		return db
	}
	if metrics != nil {
		if err := metrics.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Database pool metrics not registered", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		m, err := migration.New(sqlDB, cfg.Database.MigrationsPath, log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := m.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	return db
}

// openRedis connects the shared rate limit, cache and token blacklist
// backend. A nil client makes those fall back to memory.
func openRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory backends", zap.Error(err))
		return nil
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	return client
}
