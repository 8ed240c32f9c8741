package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/interfaces/http/dto"
)

// CategoryHandler serves the shared category collection.
type CategoryHandler struct {
	BaseHandler
	categories *timelineapp.CategoryService
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories *timelineapp.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: NewBaseHandler(logger),
		categories:  categories,
	}
}

// RegisterRoutes registers category routes.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.List)
		categories.POST("", h.Create)
		categories.GET("/:id", h.Get)
		categories.PUT("/:id", h.Update)
		categories.DELETE("/:id", h.Delete)
	}
}

// List returns all categories, oldest first.
func (h *CategoryHandler) List(c *gin.Context) {
	result, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewCategoryListResponse(result), len(result))
}

// Get returns a single category.
func (h *CategoryHandler) Get(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewCategoryResponse(cat))
}

// Create adds a category. An empty color picks the next palette entry.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cat, err := h.categories.Create(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.NewCategoryResponse(cat))
}

// Update renames or recolors a category.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cat, err := h.categories.Update(c.Request.Context(), c.Param("id"), req.Name, req.Color)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewCategoryResponse(cat))
}

// Delete removes a category. Refused while milestones still reference it.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
