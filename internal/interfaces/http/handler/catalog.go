package handler

import (
	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CatalogHandler describes the available endpoints
type CatalogHandler struct {
	BaseHandler
	endpoints []dto.EndpointResponse
}

// NewCatalogHandler creates a new CatalogHandler. The catalogue is fixed at
// startup so the response is built once.
func NewCatalogHandler(base BaseHandler, registry *endpoint.Registry) *CatalogHandler {
	all := registry.All()
	endpoints := make([]dto.EndpointResponse, 0, len(all))
	for _, e := range all {
		endpoints = append(endpoints, dto.NewEndpointResponse(e))
	}
	return &CatalogHandler{BaseHandler: base, endpoints: endpoints}
}

// List godoc
// @ID           listEndpoints
// @Summary      List endpoints
// @Description  Returns every tool endpoint with its parameters, rate limit and cache lifetime
// @Tags         catalog
// @Produce      json
// @Param        version path string true "API version" default(v2)
// @Success      200 {object} Envelope[[]dto.EndpointResponse]
// @Failure      400 {object} ErrorEnvelope
// @Router       /api/{version}/endpoints [get]
func (h *CatalogHandler) List(c *gin.Context) {
	h.Success(c, h.endpoints)
}
