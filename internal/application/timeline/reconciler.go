// Package timeline contains the application services behind the milestone
// dashboard: the board reconciler, milestone and category editing, and the
// file routing logic.
package timeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSyncInFlight is returned by Reconcile when another run already holds
// the guard for the card.
var ErrSyncInFlight = errors.New("timeline: reconciliation already in flight")

// ReconcilerConfig tunes the reconciliation run.
type ReconcilerConfig struct {
	// GuardTTL bounds how long the per-card guard stays held. A successful
	// run leaves it in place, so the TTL is also the length of the
	// once-per-session window.
	GuardTTL time.Duration

	// CategoryKeyword selects the default category for mirrored
	// attachments: the first category whose name contains the keyword.
	CategoryKeyword string

	// CommentsCategoryID and ActivityCategoryID name the categories used
	// for mirrored comments and card moves. When the category does not
	// exist the embedded fallback snapshot is used instead.
	CommentsCategoryID string
	ActivityCategoryID string
}

// DefaultReconcilerConfig returns the configuration used when nothing is
// set in the config file.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		GuardTTL:           5 * time.Minute,
		CategoryKeyword:    "trello",
		CommentsCategoryID: "cat-comments",
		ActivityCategoryID: "cat-activity",
	}
}

// ReconcileResult summarizes what a run changed.
type ReconcileResult struct {
	Skipped             bool `json:"skipped"`
	Created             int  `json:"created"`
	Deleted             int  `json:"deleted"`
	UnrecognizedActions int  `json:"unrecognized_actions"`
}

// Reconciler mirrors the external board state of a card into the project's
// milestone collection. The flow is one-way: board items become mirrored
// milestones, stale mirrored milestones are removed, and everything the
// dashboard created locally is left alone.
type Reconciler struct {
	source     card.Source
	milestones timeline.MilestoneRepository
	projects   timeline.ProjectRepository
	categories timeline.CategoryRepository
	guard      shared.SyncGuard
	cfg        ReconcilerConfig
	logger     *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(
	source card.Source,
	milestones timeline.MilestoneRepository,
	projects timeline.ProjectRepository,
	categories timeline.CategoryRepository,
	guard shared.SyncGuard,
	cfg ReconcilerConfig,
	logger *zap.Logger,
) *Reconciler {
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = DefaultReconcilerConfig().GuardTTL
	}
	return &Reconciler{
		source:     source,
		milestones: milestones,
		projects:   projects,
		categories: categories,
		guard:      guard,
		cfg:        cfg,
		logger:     logger,
	}
}

// Reconcile runs one reconciliation pass for the card. A rerun while the
// guard is held is skipped; once the guard expires, a rerun against an
// unchanged board produces an empty delta and zero writes.
func (r *Reconciler) Reconcile(ctx context.Context, c card.Card) (*ReconcileResult, error) {
	if c.IsTraining() {
		return nil, card.ErrTrainingCard
	}

	// The guard must be held before any asynchronous work starts so a
	// concurrent trigger sees the run in flight.
	acquired, err := r.guard.Begin(ctx, c.ID, r.cfg.GuardTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		r.logger.Info("Reconciliation already in flight, skipping",
			zap.String("card_id", c.ID))
		return &ReconcileResult{Skipped: true}, nil
	}

	result, err := r.sync(ctx, c)
	if err != nil {
		// Release the guard so a later re-selection can retry. A
		// successful run keeps it until the TTL expires, bounding the
		// card to one reconciliation per session.
		r.clearGuard(ctx, c.ID)
		return nil, err
	}
	return result, nil
}

func (r *Reconciler) clearGuard(ctx context.Context, cardID string) {
	if err := r.guard.Clear(context.WithoutCancel(ctx), cardID); err != nil {
		r.logger.Error("Failed to clear reconciliation guard",
			zap.String("card_id", cardID), zap.Error(err))
	}
}

// sync does the actual reconciliation work once the guard is held.
func (r *Reconciler) sync(ctx context.Context, c card.Card) (*ReconcileResult, error) {
	project := timeline.NewProject(c.ID, c.Name, c.URL)
	if err := r.projects.Upsert(ctx, project); err != nil {
		return nil, err
	}

	var (
		attachments []card.Attachment
		actions     []card.Action
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attachments, err = r.source.Attachments(gctx, c.ID)
		return err
	})
	g.Go(func() error {
		var err error
		actions, err = r.source.Actions(gctx, c.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cats, err := r.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	candidates, unrecognized := r.deriveCandidates(c, project.ID, attachments, actions, cats)

	existingIDs, err := r.milestones.ListIDs(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	change := computeDelta(candidates, existingIDs)
	if change.Empty() {
		r.logger.Info("Board unchanged, nothing to write",
			zap.String("card_id", c.ID),
			zap.Int("existing", len(existingIDs)))
		return &ReconcileResult{UnrecognizedActions: unrecognized}, nil
	}

	if err := r.milestones.ApplyBatch(ctx, project.ID, change); err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		Created:             len(change.Upserts),
		Deleted:             len(change.DeleteIDs),
		UnrecognizedActions: unrecognized,
	}
	r.logger.Info("Reconciliation complete",
		zap.String("card_id", c.ID),
		zap.Int("created", result.Created),
		zap.Int("deleted", result.Deleted),
		zap.Int("unrecognized_actions", unrecognized))
	return result, nil
}

// deriveCandidates builds the full set of milestones the board implies right
// now, keyed by milestone id. Unrecognized actions are counted but produce
// nothing.
func (r *Reconciler) deriveCandidates(
	c card.Card,
	projectID string,
	attachments []card.Attachment,
	actions []card.Action,
	cats []*timeline.Category,
) (map[string]*timeline.Milestone, int) {
	candidates := make(map[string]*timeline.Milestone)

	if createdAt, err := c.CreationTime(); err == nil {
		m := timeline.NewCreationMilestone(projectID, c.ID, c.Name, createdAt)
		candidates[m.ID] = m
	} else {
		r.logger.Warn("Card id carries no timestamp, skipping creation milestone",
			zap.String("card_id", c.ID))
	}

	attachmentCat := r.attachmentCategory(cats)
	for _, att := range attachments {
		file := timeline.AssociatedFile{
			ID:                 att.ID,
			Name:               att.FileName,
			Kind:               timeline.FileKindFromMime(att.MimeType),
			Size:               timeline.HumanizeBytes(att.Bytes),
			Bytes:              att.Bytes,
			URL:                att.URL,
			SourceAttachmentID: att.ID,
		}
		m := timeline.NewAttachmentMilestone(projectID, att.ID, file, att.Date, attachmentCat)
		candidates[m.ID] = m
	}

	commentsCat := r.lookupCategory(cats, r.cfg.CommentsCategoryID, "Comments", "#64748b")
	activityCat := r.lookupCategory(cats, r.cfg.ActivityCategoryID, "Activity", "#94a3b8")

	unrecognized := 0
	for _, act := range actions {
		switch act.Kind {
		case card.ActionComment:
			m := timeline.NewCommentMilestone(projectID, act.ID, act.Text, act.Author, act.Date, commentsCat)
			candidates[m.ID] = m
		case card.ActionMove:
			m := timeline.NewMoveMilestone(projectID, act.ID, act.ListBefore, act.ListAfter, act.Author, act.Date, activityCat)
			candidates[m.ID] = m
		default:
			unrecognized++
		}
	}
	return candidates, unrecognized
}

// attachmentCategory picks the category mirrored attachments land in: the
// first one whose name contains the configured keyword.
func (r *Reconciler) attachmentCategory(cats []*timeline.Category) timeline.CategorySnapshot {
	keyword := timeline.FoldSearch(r.cfg.CategoryKeyword)
	if keyword == "" {
		return timeline.CategorySnapshot{}
	}
	for _, c := range cats {
		if strings.Contains(timeline.FoldSearch(c.Name), keyword) {
			return c.Snapshot()
		}
	}
	return timeline.CategorySnapshot{}
}

func (r *Reconciler) lookupCategory(cats []*timeline.Category, id, fallbackName, fallbackColor string) timeline.CategorySnapshot {
	for _, c := range cats {
		if c.ID == id {
			return c.Snapshot()
		}
	}
	return timeline.CategorySnapshot{ID: id, Name: fallbackName, Color: fallbackColor}
}

// computeDelta is the set difference between what the board implies and what
// the store holds. Candidates absent from the store are created; stored
// mirrored ids whose source item is gone are deleted. Local and creation
// milestones never qualify for deletion.
func computeDelta(candidates map[string]*timeline.Milestone, existingIDs []string) timeline.BatchChange {
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	var change timeline.BatchChange
	for id, m := range candidates {
		if _, ok := existing[id]; !ok {
			change.Upserts = append(change.Upserts, m)
		}
	}
	for _, id := range existingIDs {
		if !timeline.IsMirrored(id) {
			continue
		}
		if _, ok := candidates[id]; !ok {
			change.DeleteIDs = append(change.DeleteIDs, id)
		}
	}
	return change
}
