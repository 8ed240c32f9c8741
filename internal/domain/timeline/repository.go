package timeline

import "context"

// BatchChange is the unit applied by MilestoneRepository.ApplyBatch. A change
// set with both halves empty is a no-op and produces zero writes.
type BatchChange struct {
	Upserts   []*Milestone
	DeleteIDs []string
}

// Empty reports whether applying the change would write anything.
func (b BatchChange) Empty() bool {
	return len(b.Upserts) == 0 && len(b.DeleteIDs) == 0
}

// MilestoneRepository is the document-store port for milestones.
type MilestoneRepository interface {
	// List returns the project's milestones ordered by occurrence time,
	// newest first.
	List(ctx context.Context, projectID string) ([]*Milestone, error)

	// ListIDs returns just the milestone ids of a project. The reconciler
	// uses it to compute the delta without loading payloads.
	ListIDs(ctx context.Context, projectID string) ([]string, error)

	Get(ctx context.Context, projectID, id string) (*Milestone, error)

	// Save writes a milestone, replacing any existing record with the same
	// id (merge semantics).
	Save(ctx context.Context, m *Milestone) error

	Delete(ctx context.Context, projectID, id string) error

	// ApplyBatch applies upserts and deletes atomically: either the whole
	// change set lands or none of it does.
	ApplyBatch(ctx context.Context, projectID string, change BatchChange) error
}

// CategoryRepository is the document-store port for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	Save(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error

	// CountMilestonesReferencing reports how many milestones still carry
	// the category. Delete is refused while the count is non-zero.
	CountMilestonesReferencing(ctx context.Context, categoryID string) (int64, error)
}

// ProjectRepository is the document-store port for selected cards.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*Project, error)
	// Upsert creates the project or refreshes its name, code and URL.
	Upsert(ctx context.Context, p *Project) error
	List(ctx context.Context) ([]*Project, error)
}
