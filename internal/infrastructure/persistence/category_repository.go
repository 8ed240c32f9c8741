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

// GormCategoryRepository implements timeline.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

var _ timeline.CategoryRepository = (*GormCategoryRepository)(nil)

// List returns all categories ordered by creation time
func (r *GormCategoryRepository) List(ctx context.Context) ([]*timeline.Category, error) {
	var records []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	categories := make([]*timeline.Category, 0, len(records))
	for i := range records {
		categories = append(categories, records[i].ToDomain())
	}
	return categories, nil
}

// Get finds a category by id
func (r *GormCategoryRepository) Get(ctx context.Context, id string) (*timeline.Category, error) {
	var record models.CategoryModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *timeline.Category) error {
	var record models.CategoryModel
	record.FromDomain(c)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error; err != nil {
		return shared.NewStoreWriteError("save", "categories/"+c.ID, err)
	}
	return nil
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewStoreWriteError("delete", "categories/"+id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountMilestonesReferencing reports how many milestones still carry the category
func (r *GormCategoryRepository) CountMilestonesReferencing(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MilestoneModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
