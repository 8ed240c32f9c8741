package timeline

import (
	"strings"

	"github.com/google/uuid"
)

// Milestone identifier scheme. The prefix makes every timeline entry
// addressable in one keyspace while still encoding where it came from:
//
//	milestone-local-<uuid>      created by hand in the dashboard
//	milestone-creation-<cardID> the synthetic "card created" entry
//	milestone-<itemID>          mirrors an attachment or action on the board
//
// Mirrored ids are deterministic: reconciling the same board state twice
// derives the same ids, which is what makes the delta computation and the
// idempotence guarantee work.
const (
	idPrefix         = "milestone-"
	localIDPrefix    = "milestone-local-"
	creationIDPrefix = "milestone-creation-"
)

// NewLocalMilestoneID returns a fresh id for a manually created milestone.
func NewLocalMilestoneID() string {
	return localIDPrefix + uuid.NewString()
}

// MirrorMilestoneID derives the milestone id for a board item (attachment or
// action). The same item always yields the same id.
func MirrorMilestoneID(itemID string) string {
	return idPrefix + itemID
}

// CreationMilestoneID derives the id of the synthetic creation milestone for
// a card.
func CreationMilestoneID(cardID string) string {
	return creationIDPrefix + cardID
}

// IsLocal reports whether the id belongs to a manually created milestone.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// IsCreation reports whether the id is a creation milestone id.
func IsCreation(id string) bool {
	return strings.HasPrefix(id, creationIDPrefix)
}

// IsMirrored reports whether the id mirrors a board item. Local and creation
// milestones are not mirrored: they are never deleted by reconciliation.
func IsMirrored(id string) bool {
	return strings.HasPrefix(id, idPrefix) && !IsLocal(id) && !IsCreation(id)
}

// SourceItemID returns the board item id a mirrored milestone refers to, and
// false for local or creation ids.
func SourceItemID(id string) (string, bool) {
	if !IsMirrored(id) {
		return "", false
	}
	return strings.TrimPrefix(id, idPrefix), true
}
