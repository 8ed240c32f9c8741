package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/interfaces/http/dto"
)

// ProjectHandler serves the selected projects and their board sync endpoint.
type ProjectHandler struct {
	BaseHandler
	projects   timeline.ProjectRepository
	reconciler *timelineapp.Reconciler
}

// NewProjectHandler creates a project handler.
func NewProjectHandler(projects timeline.ProjectRepository, reconciler *timelineapp.Reconciler, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: NewBaseHandler(logger),
		projects:    projects,
		reconciler:  reconciler,
	}
}

// RegisterRoutes registers project routes.
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.GET("", h.List)
		projects.GET("/:projectId", h.Get)
		projects.POST("/:projectId/sync", h.Sync)
	}
}

// List returns all projects that have a dashboard.
func (h *ProjectHandler) List(c *gin.Context) {
	result, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewProjectListResponse(result), len(result))
}

// Get returns one project record.
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewProjectResponse(p))
}

// Sync runs one reconciliation pass against the project's board card. The
// body carries the card fields the dashboard has; the card id is the path
// parameter.
func (h *ProjectHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), card.Card{
		ID:          c.Param("projectId"),
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
