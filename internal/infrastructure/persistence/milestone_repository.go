package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/infrastructure/persistence/models"
)

// GormMilestoneRepository implements timeline.MilestoneRepository using GORM
type GormMilestoneRepository struct {
	db *gorm.DB
}

// NewGormMilestoneRepository creates a new GormMilestoneRepository
func NewGormMilestoneRepository(db *gorm.DB) *GormMilestoneRepository {
	return &GormMilestoneRepository{db: db}
}

var _ timeline.MilestoneRepository = (*GormMilestoneRepository)(nil)

// List returns the project's milestones ordered by occurrence time, newest first
func (r *GormMilestoneRepository) List(ctx context.Context, projectID string) ([]*timeline.Milestone, error) {
	var records []models.MilestoneModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("occurred_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	milestones := make([]*timeline.Milestone, 0, len(records))
	for i := range records {
		m, err := records[i].ToDomain()
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

// ListIDs returns just the milestone ids of a project
func (r *GormMilestoneRepository) ListIDs(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.MilestoneModel{}).
		Where("project_id = ?", projectID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Get finds a milestone by id within a project
func (r *GormMilestoneRepository) Get(ctx context.Context, projectID, id string) (*timeline.Milestone, error) {
	var record models.MilestoneModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain()
}

// Save writes a milestone, replacing any existing record with the same id
func (r *GormMilestoneRepository) Save(ctx context.Context, m *timeline.Milestone) error {
	var record models.MilestoneModel
	if err := record.FromDomain(m); err != nil {
		return shared.NewStoreWriteError("save", milestonePath(m.ProjectID, m.ID), err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error; err != nil {
		return shared.NewStoreWriteError("save", milestonePath(m.ProjectID, m.ID), err)
	}
	return nil
}

// Delete removes a milestone
func (r *GormMilestoneRepository) Delete(ctx context.Context, projectID, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.MilestoneModel{}, "project_id = ? AND id = ?", projectID, id)
	if result.Error != nil {
		return shared.NewStoreWriteError("delete", milestonePath(projectID, id), result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ApplyBatch applies upserts and deletes in one transaction, so either the
// whole change set lands or none of it does
func (r *GormMilestoneRepository) ApplyBatch(ctx context.Context, projectID string, change timeline.BatchChange) error {
	if change.Empty() {
		return nil
	}

	records := make([]models.MilestoneModel, len(change.Upserts))
	for i, m := range change.Upserts {
		if err := records[i].FromDomain(m); err != nil {
			return shared.NewStoreWriteError("batch", milestonePath(projectID, m.ID), err)
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error; err != nil {
				return err
			}
		}
		if len(change.DeleteIDs) > 0 {
			if err := tx.Delete(&models.MilestoneModel{},
				"project_id = ? AND id IN ?", projectID, change.DeleteIDs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return shared.NewStoreWriteError("batch", milestonesPath(projectID), err)
	}
	return nil
}

func milestonePath(projectID, id string) string {
	return fmt.Sprintf("projects/%s/milestones/%s", projectID, id)
}

func milestonesPath(projectID string) string {
	return fmt.Sprintf("projects/%s/milestones", projectID)
}
