package timeline

import (
	"regexp"
	"time"
)

// projectCodePattern matches the short project code embedded in card names,
// e.g. "ABC123 - Fit out works".
var projectCodePattern = regexp.MustCompile(`\b([A-Z]{3}\d{3})\b`)

// Project is the dashboard-side record of a selected card. ID is the card id
// itself, so every milestone keyspace hangs off the board identifier.
type Project struct {
	ID        string
	Name      string
	Code      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExtractProjectCode pulls the project code out of a card name. Returns the
// empty string when the name carries none.
func ExtractProjectCode(cardName string) string {
	m := projectCodePattern.FindStringSubmatch(cardName)
	if m == nil {
		return ""
	}
	return m[1]
}

// NewProject builds the project record for a card, deriving the code from
// the card name.
func NewProject(cardID, cardName, cardURL string) *Project {
	now := time.Now()
	return &Project{
		ID:        cardID,
		Name:      cardName,
		Code:      ExtractProjectCode(cardName),
		URL:       cardURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
