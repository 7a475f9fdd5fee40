package handler

import (
	"github.com/everytoolsapi/backend/internal/application/requestlog"
	"github.com/everytoolsapi/backend/internal/application/tools"
	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ToolHandler serves the tool endpoints of the catalogue
type ToolHandler struct {
	BaseHandler
	service *tools.Service
	tracker *requestlog.Tracker
}

// NewToolHandler creates a new ToolHandler
func NewToolHandler(base BaseHandler, service *tools.Service, tracker *requestlog.Tracker) *ToolHandler {
	return &ToolHandler{
		BaseHandler: base,
		service:     service,
		tracker:     tracker,
	}
}

// Handle returns the handler of one endpoint. Every call reaching the tool
// is recorded in the request log as started, then success or exception.
func (h *ToolHandler) Handle(ep endpoint.Endpoint) gin.HandlerFunc {
	path := ep.Path()
	return func(c *gin.Context) {
		c.Set(logger.GinEndpointKey, path)
		c.Request = c.Request.WithContext(logger.WithEndpoint(c.Request.Context(), path))

		if !ep.AllowsMethod(c.Request.Method) {
			h.Error(c, shared.ErrMethodNotAllowed)
			return
		}
		if !ep.Ready {
			h.RenderError(c, shared.ErrEndpointUnavailable)
			return
		}

		ctx := c.Request.Context()
		query := c.Request.URL.Query()
		requestID := h.tracker.Start(ctx, c.Request.URL.Path, query, c.ClientIP())

		result, err := h.service.Run(ctx, path, tools.Input{
			Query:     query,
			UserAgent: c.Request.UserAgent(),
			ClientIP:  c.ClientIP(),
		})
		if err != nil {
			de := dto.ClientError(err)
			h.tracker.Fail(ctx, requestID, de.Message)
			h.HandleError(c, err)
			return
		}

		h.tracker.Succeed(ctx, requestID)
		h.Success(c, result)
	}
}
