package timeline

import (
	"context"
	"errors"

	"github.com/deatl/backend/internal/domain/timeline"
	"go.uber.org/zap"
)

// CategoryService implements category CRUD. Deletion is guarded: a category
// still referenced by milestones cannot be removed.
type CategoryService struct {
	categories timeline.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(categories timeline.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]*timeline.Category, error) {
	return s.categories.List(ctx)
}

// Get loads one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*timeline.Category, error) {
	return s.categories.Get(ctx, id)
}

// Create adds a category. Without an explicit color the next palette color
// is assigned, rotating through the default palette.
func (s *CategoryService) Create(ctx context.Context, name, color string) (*timeline.Category, error) {
	if color == "" {
		existing, err := s.categories.List(ctx)
		if err != nil {
			return nil, err
		}
		color = timeline.PaletteColor(len(existing))
	}
	c, err := timeline.NewCategory(name, color)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Category created", zap.String("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// Update renames and/or recolors a category. Milestone snapshots are not
// rewritten here; readers refresh them against the live category.
func (s *CategoryService) Update(ctx context.Context, id, name, color string) (*timeline.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(name, color); err != nil {
		if errors.Is(err, timeline.ErrNoChange) {
			return c, nil
		}
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category, refusing while any milestone references it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	count, err := s.categories.CountMilestonesReferencing(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("Category delete refused, still referenced",
			zap.String("category_id", id), zap.Int64("references", count))
		return timeline.ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id))
	return nil
}
