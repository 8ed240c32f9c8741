package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/infrastructure/persistence/models"
)

// GormProjectRepository implements timeline.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

var _ timeline.ProjectRepository = (*GormProjectRepository)(nil)

// Get finds a project by card id
func (r *GormProjectRepository) Get(ctx context.Context, id string) (*timeline.Project, error) {
	var record models.ProjectModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

// Upsert creates the project or refreshes its name, code and URL, keeping
// the original creation time
func (r *GormProjectRepository) Upsert(ctx context.Context, p *timeline.Project) error {
	var record models.ProjectModel
	record.FromDomain(p)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "code", "url", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return shared.NewStoreWriteError("upsert", "projects/"+p.ID, err)
	}
	return nil
}

// List returns all projects ordered by creation time, newest first
func (r *GormProjectRepository) List(ctx context.Context) ([]*timeline.Project, error) {
	var records []models.ProjectModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	projects := make([]*timeline.Project, 0, len(records))
	for i := range records {
		projects = append(projects, records[i].ToDomain())
	}
	return projects, nil
}
