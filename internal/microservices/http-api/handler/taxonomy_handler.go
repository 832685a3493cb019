package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler serves /categories or /genres; both expose the same operations
type TaxonomyHandler struct {
	path    string
	service service.TaxonomyService
}

func NewTaxonomyHandler(path string, svc service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{path: path, service: svc}
}

func (h *TaxonomyHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/"+h.path, h.List)
	authed.POST("/"+h.path, middleware.RequireAdmin(), h.Create)
	authed.DELETE("/"+h.path+"/:slug", middleware.RequireAdmin(), h.Delete)
}

// List GET /api/v1/{categories,genres}?search=
func (h *TaxonomyHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, err := h.service.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPage(items, total, page, pageSize, func(t *models.Taxon) dto.TaxonResponse {
		return dto.FromModelToTaxonResponse(*t)
	}))
}

// Create POST /api/v1/{categories,genres}
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.TaxonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToTaxonResponse(*t))
}

// Delete DELETE /api/v1/{categories,genres}/:slug
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
