// Package handler contains the gin handlers of the API server.
package handler

import (
	"bytes"
	"net/http"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/everytoolsapi/backend/internal/interfaces/http/middleware"
	"github.com/everytoolsapi/backend/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorPage is the data of the HTML error template
type errorPage struct {
	ErrorCode     int
	ErrorName     string
	FaviconBase64 string
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	assets *web.Assets
}

// NewBaseHandler creates a BaseHandler rendering HTML with the given assets.
// Without assets every error is written as a JSON envelope.
func NewBaseHandler(assets *web.Assets) BaseHandler {
	return BaseHandler{assets: assets}
}

// Success sends a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessEnvelope(data, middleware.Elapsed(c)))
}

// Error sends an error envelope with the status of err
func (h *BaseHandler) Error(c *gin.Context, err *shared.DomainError) {
	middleware.AbortWithEnvelope(c, err)
}

// HandleError converts any error to the envelope shown to clients.
// Errors that are not domain errors are logged and hidden.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	de := dto.ClientError(err)
	if de == shared.ErrUnexpected {
		logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	}
	h.Error(c, de)
}

// BindingError sends a 400 envelope describing a request binding failure
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	h.Error(c, dto.BindingError(err))
}

// RenderError writes err as the HTML error page when the client prefers
// HTML, and as an envelope otherwise. It satisfies middleware.ErrorRenderer.
func (h *BaseHandler) RenderError(c *gin.Context, err *shared.DomainError) {
	if h.assets == nil || !wantsHTML(c) {
		h.Error(c, err)
		return
	}
	h.ErrorPage(c, err.HTTPStatus())
}

// ErrorPage renders the HTML error page for status and aborts the chain
func (h *BaseHandler) ErrorPage(c *gin.Context, status int) {
	if h.assets == nil {
		c.AbortWithStatus(status)
		return
	}
	page := errorPage{
		ErrorCode:     status,
		ErrorName:     http.StatusText(status),
		FaviconBase64: h.assets.FaviconBase64,
	}
	var buf bytes.Buffer
	if err := h.assets.Templates.ExecuteTemplate(&buf, web.ErrorTemplate, page); err != nil {
		logger.GetGinLogger(c).Error("Failed to render error page", zap.Int("status", status), zap.Error(err))
		c.AbortWithStatus(status)
		return
	}
	c.Data(status, gin.MIMEHTML+"; charset=utf-8", buf.Bytes())
	c.Abort()
}

// wantsHTML reports whether the Accept header prefers HTML over JSON.
// API clients sending */* or nothing get JSON.
func wantsHTML(c *gin.Context) bool {
	if c.GetHeader("Accept") == "" {
		return false
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
