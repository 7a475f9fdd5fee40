package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/cache"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Values of the X-Cache header
const (
	CacheHit  = "HIT"
	CacheMiss = "MISS"
)

// ResponseCacheConfig configures caching of one route
type ResponseCacheConfig struct {
	Store   cache.Store
	TTL     time.Duration
	Scope   string
	Metrics *telemetry.Metrics
	Logger  *zap.Logger

	// VaryByCaller adds the client IP and User-Agent to the key of requests
	// without a "query" parameter, whose answer is derived from the caller
	VaryByCaller bool
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the handler ran
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheKey is the cache key of a request: method plus the full request URI,
// so differently ordered query strings are cached separately. With
// varyByCaller and no "query" parameter the caller is part of the key.
func CacheKey(c *gin.Context, varyByCaller bool) string {
	key := c.Request.Method + ":" + c.Request.URL.RequestURI()
	if !varyByCaller || c.Query("query") != "" {
		return key
	}
	sum := sha256.Sum256([]byte(c.ClientIP() + "\n" + c.GetHeader("User-Agent")))
	return key + ":caller:" + hex.EncodeToString(sum[:12])
}

// ResponseCache serves 200 responses of GET requests from the store for TTL.
// Store failures degrade to a miss.
func ResponseCache(cfg ResponseCacheConfig) gin.HandlerFunc {
	if cfg.Store == nil || cfg.TTL <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := CacheKey(c, cfg.VaryByCaller)
		span := trace.SpanFromContext(ctx)

		raw, ok, err := cfg.Store.Get(ctx, key)
		if err != nil {
			cfg.Metrics.ObserveCache(cfg.Scope, "error")
			logger.L(ctx).Warn("response cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				cfg.Metrics.ObserveCache(cfg.Scope, "hit")
				span.SetAttributes(attribute.Bool(telemetry.SpanAttrCacheHit, true))
				c.Header(HeaderCache, CacheHit)
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			cfg.Logger.Warn("dropping undecodable cache entry", zap.String("key", key))
			_ = cfg.Store.Delete(ctx, key)
		}

		cfg.Metrics.ObserveCache(cfg.Scope, "miss")
		span.SetAttributes(attribute.Bool(telemetry.SpanAttrCacheHit, false))
		c.Header(HeaderCache, CacheMiss)

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()
		c.Writer = rec.ResponseWriter

		if rec.Status() != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		entry, err := json.Marshal(cachedResponse{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := cfg.Store.Set(ctx, key, entry, cfg.TTL); err != nil {
			cfg.Metrics.ObserveCache(cfg.Scope, "error")
			logger.L(ctx).Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}
