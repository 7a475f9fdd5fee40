package handler

import (
	"github.com/everytoolsapi/backend/internal/application/requestlog"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/everytoolsapi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the request log administration API
type AdminHandler struct {
	BaseHandler
	service *requestlog.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(base BaseHandler, service *requestlog.AdminService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, service: service}
}

// Login godoc
// @ID           adminLogin
// @Summary      Admin login
// @Description  Checks the admin credentials and returns an access token
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        version path string true "API version" default(v2)
// @Param        request body requestlog.LoginRequest true "Credentials"
// @Success      200 {object} Envelope[auth.Token]
// @Failure      400 {object} ErrorEnvelope
// @Failure      401 {object} ErrorEnvelope
// @Router       /api/{version}/admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req requestlog.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, token)
}

// Logout godoc
// @ID           adminLogout
// @Summary      Admin logout
// @Description  Revokes the access token used for the request
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        version path string true "API version" default(v2)
// @Success      200 {object} Envelope[dto.EmptyResponse]
// @Failure      401 {object} ErrorEnvelope
// @Router       /api/{version}/admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.GetJWTClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Stats godoc
// @ID           adminRequestStats
// @Summary      Request statistics
// @Description  Aggregates the request log since an RFC 3339 timestamp or a look-back duration (default 24h)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        version path string true "API version" default(v2)
// @Param        since query string false "RFC 3339 timestamp or duration" example(24h)
// @Param        top query int false "Number of top routes" minimum(1) maximum(100)
// @Success      200 {object} Envelope[requestlog.StatsResponse]
// @Failure      400 {object} ErrorEnvelope
// @Failure      401 {object} ErrorEnvelope
// @Router       /api/{version}/admin/requests/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	var req requestlog.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Request godoc
// @ID           adminGetRequest
// @Summary      Get a request
// @Description  Returns a recorded request with its status history and exceptions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        version path string true "API version" default(v2)
// @Param        id path int true "Request ID"
// @Success      200 {object} Envelope[any] "Request with status history and exceptions"
// @Failure      401 {object} ErrorEnvelope
// @Failure      404 {object} ErrorEnvelope
// @Router       /api/{version}/admin/requests/{id} [get]
func (h *AdminHandler) Request(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	found, err := h.service.Request(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}
