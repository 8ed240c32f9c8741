package card

import "time"

// ActionKind discriminates the activity variants recorded on a card.
type ActionKind string

const (
	ActionComment      ActionKind = "comment"
	ActionMove         ActionKind = "move"
	ActionUnrecognized ActionKind = "unrecognized"
)

// String returns the string representation of the kind.
func (k ActionKind) String() string {
	return string(k)
}

// Action is a single activity record on a card. Kind selects which of the
// variant fields are meaningful: Text for comments, ListBefore/ListAfter for
// moves. Unrecognized actions are carried through so callers can count or
// log them, but they never produce milestones.
type Action struct {
	ID     string
	Kind   ActionKind
	Date   time.Time
	Author string

	// Comment variant
	Text string

	// Move variant
	ListBefore string
	ListAfter  string
}

// IsRecognized reports whether the action maps to a timeline entry.
func (a Action) IsRecognized() bool {
	return a.Kind == ActionComment || a.Kind == ActionMove
}
