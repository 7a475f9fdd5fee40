package handler

import (
	"bytes"
	"net/http"

	"github.com/everytoolsapi/backend/internal/application/requestlog"
	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/interfaces/http/dto"
	"github.com/everytoolsapi/backend/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultDocsURL is where /docs redirects when no URL is configured
const DefaultDocsURL = "https://everytoolsapi.docs.apiary.io"

// categoryOrder is the order of the sections of the index page
var categoryOrder = []endpoint.Category{
	endpoint.CategoryParser,
	endpoint.CategoryTools,
	endpoint.CategoryRandomizer,
	endpoint.CategoryScraper,
}

type indexCategory struct {
	Name      string
	Endpoints []endpoint.Endpoint
}

type indexPage struct {
	FaviconBase64 string
	Version       string
	Categories    []indexCategory
}

// PageHandler serves the HTML pages, the static files and the status endpoint
type PageHandler struct {
	BaseHandler
	assets   *web.Assets
	registry *endpoint.Registry
	tracker  *requestlog.Tracker
	docsURL  string
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(
	base BaseHandler,
	assets *web.Assets,
	registry *endpoint.Registry,
	tracker *requestlog.Tracker,
	docsURL string,
) *PageHandler {
	if docsURL == "" {
		docsURL = DefaultDocsURL
	}
	return &PageHandler{
		BaseHandler: base,
		assets:      assets,
		registry:    registry,
		tracker:     tracker,
		docsURL:     docsURL,
	}
}

// Index renders the landing page listing every endpoint by category
func (h *PageHandler) Index(c *gin.Context) {
	byCategory := h.registry.ByCategory()
	page := indexPage{
		FaviconBase64: h.assets.FaviconBase64,
		Version:       endpoint.LatestVersion,
		Categories:    make([]indexCategory, 0, len(byCategory)),
	}
	for _, cat := range categoryOrder {
		if eps := byCategory[cat]; len(eps) > 0 {
			page.Categories = append(page.Categories, indexCategory{Name: string(cat), Endpoints: eps})
		}
	}

	var buf bytes.Buffer
	if err := h.assets.Templates.ExecuteTemplate(&buf, web.IndexTemplate, page); err != nil {
		logger.GetGinLogger(c).Error("Failed to render index page", zap.Error(err))
		h.ErrorPage(c, http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, gin.MIMEHTML+"; charset=utf-8", buf.Bytes())
}

// Docs redirects to the hosted documentation
func (h *PageHandler) Docs(c *gin.Context) {
	c.Redirect(http.StatusFound, h.docsURL)
}

// Status godoc
// @ID           getStatus
// @Summary      API status
// @Description  Reports that the API server is running
// @Tags         system
// @Produce      json
// @Success      200 {object} Envelope[dto.StatusResponse]
// @Failure      429 {object} ErrorEnvelope
// @Router       /api/status [get]
func (h *PageHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := h.tracker.Start(ctx, c.Request.URL.Path, c.Request.URL.Query(), c.ClientIP())
	h.tracker.Succeed(ctx, requestID)

	h.Success(c, dto.StatusResponse{
		Status:  "ok",
		Message: "API server is successfully running.",
	})
}

// Favicon serves the favicon
func (h *PageHandler) Favicon(c *gin.Context) {
	c.Data(http.StatusOK, "image/x-icon", h.assets.Favicon)
}

// StaticFS returns the static files for router.StaticFS
func (h *PageHandler) StaticFS() http.FileSystem {
	return http.FS(h.assets.Static)
}

// NoRoute answers unknown routes with a 404
func (h *PageHandler) NoRoute(c *gin.Context) {
	h.RenderError(c, shared.ErrRouteNotFound)
}

// NoMethod answers known routes called with another method with a 405
func (h *PageHandler) NoMethod(c *gin.Context) {
	h.RenderError(c, shared.ErrMethodNotAllowed)
}

// Panic renders the 500 response after a recovered panic. It satisfies
// logger.PanicHandler.
func (h *PageHandler) Panic(c *gin.Context, _ error) {
	h.RenderError(c, shared.ErrUnexpected)
}
