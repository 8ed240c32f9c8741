package timeline

import (
	"context"
	"errors"
	"time"

	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/timeline"
	"go.uber.org/zap"
)

// MilestoneService implements the dashboard's editing operations. Every
// mutation is load-mutate-save against the milestone repository; no-op
// mutations are skipped without a write and without a history entry.
type MilestoneService struct {
	milestones timeline.MilestoneRepository
	categories timeline.CategoryRepository
	logger     *zap.Logger
}

// NewMilestoneService creates a milestone service.
func NewMilestoneService(milestones timeline.MilestoneRepository, categories timeline.CategoryRepository, logger *zap.Logger) *MilestoneService {
	return &MilestoneService{milestones: milestones, categories: categories, logger: logger}
}

// CreateManualInput carries the fields of a manually created milestone.
type CreateManualInput struct {
	Title       string
	Description string
	OccurredAt  time.Time
	CategoryID  string
	Files       []timeline.AssociatedFile
}

// CreateManual creates a dashboard-authored milestone. The chosen date is
// normalized against the current time: today keeps the clock, any other day
// lands at 07:00.
func (s *MilestoneService) CreateManual(ctx context.Context, projectID string, input CreateManualInput) (*timeline.Milestone, error) {
	if projectID == card.TrainingCardID {
		return nil, card.ErrTrainingCard
	}

	var snapshot timeline.CategorySnapshot
	if input.CategoryID != "" {
		cat, err := s.categories.Get(ctx, input.CategoryID)
		if err != nil {
			return nil, err
		}
		snapshot = cat.Snapshot()
	}

	occurredAt := timeline.NormalizeOccurredAt(input.OccurredAt, time.Now())
	m, err := timeline.NewManualMilestone(projectID, input.Title, input.Description, occurredAt, snapshot, input.Files)
	if err != nil {
		return nil, err
	}
	if err := s.milestones.Save(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Milestone created",
		zap.String("project_id", projectID),
		zap.String("milestone_id", m.ID))
	return m, nil
}

// List returns the project's milestones filtered by the search query, with
// category snapshots refreshed against the live categories. Milestones whose
// category was deleted keep their stored snapshot.
func (s *MilestoneService) List(ctx context.Context, projectID, query string) ([]*timeline.Milestone, error) {
	ms, err := s.milestones.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[string]timeline.CategorySnapshot, len(cats))
	for _, c := range cats {
		live[c.ID] = c.Snapshot()
	}

	out := make([]*timeline.Milestone, 0, len(ms))
	for _, m := range ms {
		if snap, ok := live[m.Category.ID]; ok {
			m.Category = snap
		}
		if m.MatchesQuery(query) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Get loads a single milestone.
func (s *MilestoneService) Get(ctx context.Context, projectID, id string) (*timeline.Milestone, error) {
	return s.milestones.Get(ctx, projectID, id)
}

// mutate loads a milestone, applies fn and saves the result. ErrNoChange
// short-circuits to success without a write.
func (s *MilestoneService) mutate(ctx context.Context, projectID, id string, fn func(*timeline.Milestone) error) (*timeline.Milestone, error) {
	if projectID == card.TrainingCardID {
		return nil, card.ErrTrainingCard
	}
	m, err := s.milestones.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		if errors.Is(err, timeline.ErrNoChange) {
			return m, nil
		}
		return nil, err
	}
	if err := s.milestones.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Rename changes a milestone's title.
func (s *MilestoneService) Rename(ctx context.Context, projectID, id, title string) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.Rename(title)
	})
}

// Redescribe changes a milestone's description.
func (s *MilestoneService) Redescribe(ctx context.Context, projectID, id, description string) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.Redescribe(description)
	})
}

// Recategorize moves a milestone to another category.
func (s *MilestoneService) Recategorize(ctx context.Context, projectID, id, categoryID string) (*timeline.Milestone, error) {
	cat, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.Recategorize(cat.Snapshot())
	})
}

// Redate moves a milestone to a new date, normalized against its current
// occurrence time.
func (s *MilestoneService) Redate(ctx context.Context, projectID, id string, occurredAt time.Time) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.Redate(timeline.NormalizeOccurredAt(occurredAt, m.OccurredAt))
	})
}

// AddTag appends a tag.
func (s *MilestoneService) AddTag(ctx context.Context, projectID, id, tag string) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.AddTag(tag)
	})
}

// RemoveTag removes a tag.
func (s *MilestoneService) RemoveTag(ctx context.Context, projectID, id, tag string) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		return m.RemoveTag(tag)
	})
}

// ToggleImportant flips the importance flag.
func (s *MilestoneService) ToggleImportant(ctx context.Context, projectID, id string) (*timeline.Milestone, error) {
	return s.mutate(ctx, projectID, id, func(m *timeline.Milestone) error {
		m.ToggleImportant()
		return nil
	})
}

// Delete removes a milestone. The caller must pass confirmed=true; the
// dashboard requires typing a confirmation word before it does.
func (s *MilestoneService) Delete(ctx context.Context, projectID, id string, confirmed bool) error {
	if projectID == card.TrainingCardID {
		return card.ErrTrainingCard
	}
	if !confirmed {
		return timeline.ErrConfirmationRequired
	}
	if err := s.milestones.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.logger.Info("Milestone deleted",
		zap.String("project_id", projectID),
		zap.String("milestone_id", id))
	return nil
}
