package timeline

import (
	"strings"
	"time"

	"github.com/deatl/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups milestones on the timeline. Name and Color are denormalized
// into every milestone that references the category so listings render
// without a join; the stored snapshot is refreshed on read.
type Category struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPalette is rotated through when categories are created without an
// explicit color.
var DefaultPalette = []string{
	"#3b82f6", // blue
	"#10b981", // emerald
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#ef4444", // red
	"#06b6d4", // cyan
	"#ec4899", // pink
	"#84cc16", // lime
}

// PaletteColor returns the default color for the n-th created category.
func PaletteColor(n int) string {
	return DefaultPalette[n%len(DefaultPalette)]
}

// NewCategory creates a category. An empty color is filled from the palette
// by the caller, which knows how many categories already exist.
func NewCategory(name, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrInvalidInput
	}
	now := time.Now()
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update changes the category's name and/or color. Empty arguments leave the
// current value in place.
func (c *Category) Update(name, color string) error {
	name = strings.TrimSpace(name)
	changed := false
	if name != "" && name != c.Name {
		c.Name = name
		changed = true
	}
	if color != "" && color != c.Color {
		c.Color = color
		changed = true
	}
	if !changed {
		return ErrNoChange
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Snapshot returns the denormalized view embedded into milestones.
func (c *Category) Snapshot() CategorySnapshot {
	return CategorySnapshot{ID: c.ID, Name: c.Name, Color: c.Color}
}

// CategorySnapshot is the category view stored inside a milestone. When the
// live category changes, readers replace the snapshot; when the category was
// deleted, the snapshot is what keeps old milestones renderable.
type CategorySnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
