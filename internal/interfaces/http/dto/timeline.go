package dto

import (
	"time"

	"github.com/deatl/backend/internal/domain/timeline"
)

// SyncRequest carries the card fields sent when a dashboard triggers a
// board sync for its project.
type SyncRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CreateMilestoneRequest is the body for creating a manual milestone.
type CreateMilestoneRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
	CategoryID  string    `json:"category_id"`
}

// UpdateMilestoneRequest is the body for a partial milestone update. Only
// the fields present are applied.
type UpdateMilestoneRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	CategoryID  *string    `json:"category_id"`
	OccurredAt  *time.Time `json:"occurred_at"`
}

// TagRequest is the body for adding a tag to a milestone.
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// CreateCategoryRequest is the body for creating a category. Color is
// optional; an empty color gets the next palette entry.
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"omitempty,category_color"`
}

// UpdateCategoryRequest is the body for a partial category update.
type UpdateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color" binding:"omitempty,category_color"`
}

// HistoryEntryResponse is one audit-trail line of a milestone.
type HistoryEntryResponse struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// MilestoneResponse is the wire form of a milestone.
type MilestoneResponse struct {
	ID          string                     `json:"id"`
	ProjectID   string                     `json:"project_id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description,omitempty"`
	OccurredAt  time.Time                  `json:"occurred_at"`
	Category    *timeline.CategorySnapshot `json:"category,omitempty"`
	Tags        []string                   `json:"tags"`
	Important   bool                       `json:"important"`
	Files       []timeline.AssociatedFile  `json:"files"`
	History     []HistoryEntryResponse     `json:"history"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// NewMilestoneResponse converts a domain milestone to its wire form.
func NewMilestoneResponse(m *timeline.Milestone) MilestoneResponse {
	resp := MilestoneResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		OccurredAt:  m.OccurredAt,
		Tags:        m.Tags,
		Important:   m.Important,
		Files:       m.Files,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category.ID != "" {
		snapshot := m.Category
		resp.Category = &snapshot
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Files == nil {
		resp.Files = []timeline.AssociatedFile{}
	}
	resp.History = make([]HistoryEntryResponse, 0, len(m.History))
	for _, h := range m.History {
		resp.History = append(resp.History, HistoryEntryResponse{At: h.At, Text: h.Text})
	}
	return resp
}

// NewMilestoneListResponse converts a list of milestones.
func NewMilestoneListResponse(milestones []*timeline.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, NewMilestoneResponse(m))
	}
	return out
}

// CategoryResponse is the wire form of a category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCategoryResponse converts a domain category to its wire form.
func NewCategoryResponse(c *timeline.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCategoryListResponse converts a list of categories.
func NewCategoryListResponse(categories []*timeline.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

// ProjectResponse is the wire form of a project record.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProjectResponse converts a domain project to its wire form.
func NewProjectResponse(p *timeline.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		URL:       p.URL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewProjectListResponse converts a list of projects.
func NewProjectListResponse(projects []*timeline.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProjectResponse(p))
	}
	return out
}
