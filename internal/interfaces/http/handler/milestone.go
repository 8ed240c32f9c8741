package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/interfaces/http/dto"
)

// MilestoneHandler serves the milestone timeline of a project.
type MilestoneHandler struct {
	BaseHandler
	milestones *timelineapp.MilestoneService
}

// NewMilestoneHandler creates a milestone handler.
func NewMilestoneHandler(milestones *timelineapp.MilestoneService, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{
		BaseHandler: NewBaseHandler(logger),
		milestones:  milestones,
	}
}

// RegisterRoutes registers milestone routes under /projects/:projectId.
func (h *MilestoneHandler) RegisterRoutes(rg *gin.RouterGroup) {
	milestones := rg.Group("/projects/:projectId/milestones")
	{
		milestones.GET("", h.List)
		milestones.POST("", h.Create)
		milestones.GET("/:id", h.Get)
		milestones.PATCH("/:id", h.Update)
		milestones.DELETE("/:id", h.Delete)
		milestones.POST("/:id/tags", h.AddTag)
		milestones.DELETE("/:id/tags/:tag", h.RemoveTag)
		milestones.POST("/:id/important", h.ToggleImportant)
	}
}

// List returns the project's milestones, newest first. The optional ?q=
// parameter filters by title, description, tags and category name.
func (h *MilestoneHandler) List(c *gin.Context) {
	projectID := c.Param("projectId")
	query := c.Query("q")

	result, err := h.milestones.List(c.Request.Context(), projectID, query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewMilestoneListResponse(result), len(result))
}

// Create adds a manual milestone to the project timeline.
func (h *MilestoneHandler) Create(c *gin.Context) {
	projectID := c.Param("projectId")

	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.milestones.CreateManual(c.Request.Context(), projectID, timelineapp.CreateManualInput{
		Title:       req.Title,
		Description: req.Description,
		OccurredAt:  req.OccurredAt,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.NewMilestoneResponse(m))
}

// Get returns a single milestone.
func (h *MilestoneHandler) Get(c *gin.Context) {
	m, err := h.milestones.Get(c.Request.Context(), c.Param("projectId"), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}

// Update applies a partial update. Only fields present in the body change;
// each applied field appends its own history entry.
func (h *MilestoneHandler) Update(c *gin.Context) {
	projectID := c.Param("projectId")
	id := c.Param("id")

	var req dto.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var m *timeline.Milestone
	var err error
	apply := func(fn func() (*timeline.Milestone, error)) bool {
		m, err = fn()
		return err == nil
	}

	ctx := c.Request.Context()
	if req.Title != nil && !apply(func() (*timeline.Milestone, error) {
		return h.milestones.Rename(ctx, projectID, id, *req.Title)
	}) {
		h.HandleDomainError(c, err)
		return
	}
	if req.Description != nil && !apply(func() (*timeline.Milestone, error) {
		return h.milestones.Redescribe(ctx, projectID, id, *req.Description)
	}) {
		h.HandleDomainError(c, err)
		return
	}
	if req.CategoryID != nil && !apply(func() (*timeline.Milestone, error) {
		return h.milestones.Recategorize(ctx, projectID, id, *req.CategoryID)
	}) {
		h.HandleDomainError(c, err)
		return
	}
	if req.OccurredAt != nil && !apply(func() (*timeline.Milestone, error) {
		return h.milestones.Redate(ctx, projectID, id, *req.OccurredAt)
	}) {
		h.HandleDomainError(c, err)
		return
	}

	if m == nil {
		// Empty patch: nothing applied, return the current state.
		if m, err = h.milestones.Get(ctx, projectID, id); err != nil {
			h.HandleDomainError(c, err)
			return
		}
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}

// Delete removes a milestone. The ?confirmed=true flag is mandatory.
func (h *MilestoneHandler) Delete(c *gin.Context) {
	confirmed := c.Query("confirmed") == "true"
	err := h.milestones.Delete(c.Request.Context(), c.Param("projectId"), c.Param("id"), confirmed)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// AddTag appends a tag to the milestone.
func (h *MilestoneHandler) AddTag(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.milestones.AddTag(c.Request.Context(), c.Param("projectId"), c.Param("id"), req.Tag)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}

// RemoveTag removes a tag from the milestone.
func (h *MilestoneHandler) RemoveTag(c *gin.Context) {
	m, err := h.milestones.RemoveTag(c.Request.Context(), c.Param("projectId"), c.Param("id"), c.Param("tag"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}

// ToggleImportant flips the milestone's importance flag.
func (h *MilestoneHandler) ToggleImportant(c *gin.Context) {
	m, err := h.milestones.ToggleImportant(c.Request.Context(), c.Param("projectId"), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.NewMilestoneResponse(m))
}
