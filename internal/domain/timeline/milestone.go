package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/deatl/backend/internal/domain/shared"
)

// Well-known tags applied by the system.
const (
	TagManual     = "manual"
	TagAttachment = "attachment"
	TagComment    = "comment"
	TagActivity   = "activity"
	TagCreation   = "creation"
	TagImportant  = "important"
)

// HistoryEntry is one line of a milestone's audit trail. History is
// append-only: mutations add entries, nothing ever removes them.
type HistoryEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Milestone is a single timeline entry of a project. Mirrored milestones are
// derived from the external board and owned by the reconciler; local ones
// are created and edited in the dashboard.
type Milestone struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	OccurredAt  time.Time
	Category    CategorySnapshot
	Tags        []string
	Important   bool
	Files       []AssociatedFile
	History     []HistoryEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewManualMilestone creates a dashboard-authored milestone. The initial
// history entry records how many files were attached at creation.
func NewManualMilestone(projectID, title, description string, occurredAt time.Time, category CategorySnapshot, files []AssociatedFile) (*Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrInvalidInput
	}
	now := time.Now()
	m := &Milestone{
		ID:          NewLocalMilestoneID(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		OccurredAt:  occurredAt,
		Category:    category,
		Tags:        []string{TagManual},
		Files:       files,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.History = []HistoryEntry{{At: now, Text: fmt.Sprintf("Milestone created with %d file(s)", len(files))}}
	return m, nil
}

// NewCreationMilestone builds the synthetic "card created" entry from the
// timestamp embedded in the card id.
func NewCreationMilestone(projectID, cardID, cardName string, createdAt time.Time) *Milestone {
	now := time.Now()
	return &Milestone{
		ID:          CreationMilestoneID(cardID),
		ProjectID:   projectID,
		Title:       "Project created",
		Description: fmt.Sprintf("Card %q was created on the board", cardName),
		OccurredAt:  createdAt,
		Tags:        []string{TagCreation},
		History:     []HistoryEntry{{At: now, Text: "Derived from card creation"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewAttachmentMilestone mirrors a board attachment as a timeline entry
// carrying one associated file.
func NewAttachmentMilestone(projectID, itemID string, file AssociatedFile, at time.Time, category CategorySnapshot) *Milestone {
	now := time.Now()
	return &Milestone{
		ID:         MirrorMilestoneID(itemID),
		ProjectID:  projectID,
		Title:      file.Name,
		OccurredAt: at,
		Category:   category,
		Tags:       []string{TagAttachment},
		Files:      []AssociatedFile{file},
		History:    []HistoryEntry{{At: now, Text: "Mirrored from board attachment"}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewCommentMilestone mirrors a card comment.
func NewCommentMilestone(projectID, itemID, text, author string, at time.Time, category CategorySnapshot) *Milestone {
	now := time.Now()
	return &Milestone{
		ID:          MirrorMilestoneID(itemID),
		ProjectID:   projectID,
		Title:       commentTitle(text),
		Description: text,
		OccurredAt:  at,
		Category:    category,
		Tags:        []string{TagComment},
		History:     []HistoryEntry{{At: now, Text: commentHistory(author)}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewMoveMilestone mirrors a list-to-list card move.
func NewMoveMilestone(projectID, itemID, listBefore, listAfter, author string, at time.Time, category CategorySnapshot) *Milestone {
	now := time.Now()
	return &Milestone{
		ID:          MirrorMilestoneID(itemID),
		ProjectID:   projectID,
		Title:       fmt.Sprintf("Moved to %s", listAfter),
		Description: fmt.Sprintf("Card moved from %q to %q", listBefore, listAfter),
		OccurredAt:  at,
		Category:    category,
		Tags:        []string{TagActivity},
		History:     []HistoryEntry{{At: now, Text: moveHistory(author)}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func commentTitle(text string) string {
	const max = 60
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}

func commentHistory(author string) string {
	if author == "" {
		return "Mirrored from card comment"
	}
	return fmt.Sprintf("Mirrored from card comment by %s", author)
}

func moveHistory(author string) string {
	if author == "" {
		return "Mirrored from card activity"
	}
	return fmt.Sprintf("Mirrored from card activity by %s", author)
}

// touch records a history line and bumps UpdatedAt. Every successful mutator
// calls it exactly once.
func (m *Milestone) touch(entry string) {
	now := time.Now()
	m.History = append(m.History, HistoryEntry{At: now, Text: entry})
	m.UpdatedAt = now
}

// Rename changes the milestone title.
func (m *Milestone) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.ErrInvalidInput
	}
	if title == m.Title {
		return ErrNoChange
	}
	old := m.Title
	m.Title = title
	m.touch(fmt.Sprintf("Title changed from %q to %q", old, title))
	return nil
}

// Redescribe changes the description.
func (m *Milestone) Redescribe(description string) error {
	if description == m.Description {
		return ErrNoChange
	}
	m.Description = description
	m.touch("Description updated")
	return nil
}

// Recategorize replaces the category snapshot.
func (m *Milestone) Recategorize(category CategorySnapshot) error {
	if category.ID == m.Category.ID {
		return ErrNoChange
	}
	m.Category = category
	m.touch(fmt.Sprintf("Category changed to %q", category.Name))
	return nil
}

// Redate moves the milestone to a new instant. Callers normalize the value
// with NormalizeOccurredAt first.
func (m *Milestone) Redate(occurredAt time.Time) error {
	if occurredAt.Equal(m.OccurredAt) {
		return ErrNoChange
	}
	m.OccurredAt = occurredAt
	m.touch(fmt.Sprintf("Date changed to %s", occurredAt.Format("2006-01-02 15:04")))
	return nil
}

// AddTag appends a tag if not already present.
func (m *Milestone) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return shared.ErrInvalidInput
	}
	for _, t := range m.Tags {
		if t == tag {
			return ErrNoChange
		}
	}
	m.Tags = append(m.Tags, tag)
	m.touch(fmt.Sprintf("Tag %q added", tag))
	return nil
}

// RemoveTag removes a tag if present.
func (m *Milestone) RemoveTag(tag string) error {
	for i, t := range m.Tags {
		if t == tag {
			m.Tags = append(m.Tags[:i], m.Tags[i+1:]...)
			m.touch(fmt.Sprintf("Tag %q removed", tag))
			return nil
		}
	}
	return ErrNoChange
}

// ToggleImportant flips the importance flag.
func (m *Milestone) ToggleImportant() {
	m.Important = !m.Important
	if m.Important {
		m.touch("Marked as important")
	} else {
		m.touch("Importance removed")
	}
}

// HasFileNamed reports whether a file with the given name is already
// associated.
func (m *Milestone) HasFileNamed(name string) bool {
	for _, f := range m.Files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// AttachFiles associates a batch of files, skipping names already present.
// The whole batch produces one history entry.
func (m *Milestone) AttachFiles(files []AssociatedFile) error {
	added := 0
	for _, f := range files {
		if m.HasFileNamed(f.Name) {
			continue
		}
		m.Files = append(m.Files, f)
		added++
	}
	if added == 0 {
		return ErrNoChange
	}
	m.touch(fmt.Sprintf("%d file(s) attached", added))
	return nil
}

// RemoveFile detaches a file by id.
func (m *Milestone) RemoveFile(fileID string) error {
	for i, f := range m.Files {
		if f.ID == fileID {
			name := f.Name
			m.Files = append(m.Files[:i], m.Files[i+1:]...)
			m.touch(fmt.Sprintf("File %q removed", name))
			return nil
		}
	}
	return ErrFileNotFound
}

// NormalizeOccurredAt applies the dashboard's date rule: picking the same
// calendar day as the reference keeps the reference's clock time, any other
// day lands at 07:00 local so entries sort ahead of the working day.
func NormalizeOccurredAt(chosen, reference time.Time) time.Time {
	if sameDay(chosen, reference) {
		return reference
	}
	y, mo, d := chosen.Date()
	return time.Date(y, mo, d, 7, 0, 0, 0, chosen.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
