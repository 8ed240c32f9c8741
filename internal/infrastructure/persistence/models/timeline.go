// Package models holds the GORM persistence models for the timeline store
// and their conversions to and from domain entities.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/deatl/backend/internal/domain/timeline"
)

// MilestoneModel persists a timeline milestone. Tags, files and history are
// stored as jsonb documents; the category snapshot is flattened into columns
// so listings and reference counts need no join.
type MilestoneModel struct {
	ID            string    `gorm:"type:varchar(100);primary_key"`
	ProjectID     string    `gorm:"type:varchar(100);not null;index"`
	Title         string    `gorm:"type:varchar(500);not null"`
	Description   string    `gorm:"type:text"`
	OccurredAt    time.Time `gorm:"not null;index"`
	CategoryID    string    `gorm:"type:varchar(100);index"`
	CategoryName  string    `gorm:"type:varchar(200)"`
	CategoryColor string    `gorm:"type:varchar(20)"`
	Important     bool      `gorm:"not null;default:false"`
	TagsJSON      []byte    `gorm:"column:tags;type:jsonb"`
	FilesJSON     []byte    `gorm:"column:files;type:jsonb"`
	HistoryJSON   []byte    `gorm:"column:history;type:jsonb"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MilestoneModel) TableName() string {
	return "milestones"
}

// FromDomain populates the model from a domain milestone.
func (m *MilestoneModel) FromDomain(ms *timeline.Milestone) error {
	tags, err := json.Marshal(ms.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	files, err := json.Marshal(ms.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}
	history, err := json.Marshal(ms.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	m.ID = ms.ID
	m.ProjectID = ms.ProjectID
	m.Title = ms.Title
	m.Description = ms.Description
	m.OccurredAt = ms.OccurredAt
	m.CategoryID = ms.Category.ID
	m.CategoryName = ms.Category.Name
	m.CategoryColor = ms.Category.Color
	m.Important = ms.Important
	m.TagsJSON = tags
	m.FilesJSON = files
	m.HistoryJSON = history
	m.CreatedAt = ms.CreatedAt
	m.UpdatedAt = ms.UpdatedAt
	return nil
}

// ToDomain converts the persistence model to a domain milestone.
func (m *MilestoneModel) ToDomain() (*timeline.Milestone, error) {
	ms := &timeline.Milestone{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		OccurredAt:  m.OccurredAt,
		Category: timeline.CategorySnapshot{
			ID:    m.CategoryID,
			Name:  m.CategoryName,
			Color: m.CategoryColor,
		},
		Important: m.Important,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.TagsJSON) > 0 {
		if err := json.Unmarshal(m.TagsJSON, &ms.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(m.FilesJSON) > 0 {
		if err := json.Unmarshal(m.FilesJSON, &ms.Files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal files: %w", err)
		}
	}
	if len(m.HistoryJSON) > 0 {
		if err := json.Unmarshal(m.HistoryJSON, &ms.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	return ms, nil
}

// CategoryModel persists a milestone category.
type CategoryModel struct {
	ID        string    `gorm:"type:varchar(100);primary_key"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Color     string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// FromDomain populates the model from a domain category.
func (m *CategoryModel) FromDomain(c *timeline.Category) {
	m.ID = c.ID
	m.Name = c.Name
	m.Color = c.Color
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ToDomain converts the persistence model to a domain category.
func (m *CategoryModel) ToDomain() *timeline.Category {
	return &timeline.Category{
		ID:        m.ID,
		Name:      m.Name,
		Color:     m.Color,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ProjectModel persists a selected card's project record.
type ProjectModel struct {
	ID        string    `gorm:"type:varchar(100);primary_key"`
	Name      string    `gorm:"type:varchar(500);not null"`
	Code      string    `gorm:"type:varchar(20);index"`
	URL       string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// FromDomain populates the model from a domain project.
func (m *ProjectModel) FromDomain(p *timeline.Project) {
	m.ID = p.ID
	m.Name = p.Name
	m.Code = p.Code
	m.URL = p.URL
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ToDomain converts the persistence model to a domain project.
func (m *ProjectModel) ToDomain() *timeline.Project {
	return &timeline.Project{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		URL:       m.URL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
