// Package card models the external task-board card a project dashboard is
// bound to, together with the port used to reach the board's REST API.
package card

import (
	"errors"
	"strconv"
	"time"
)

// TrainingCardID is a sentinel card used in demos and onboarding sessions.
// Reconciliation and every write path short-circuit when they see it so the
// training board never leaks into the document store.
const TrainingCardID = "training-rsa999"

// ErrTrainingCard is returned when an operation is attempted against the
// training sentinel card.
var ErrTrainingCard = errors.New("card: training card is read-only")

// Card is a task-board card as selected by the user.
type Card struct {
	ID          string
	Name        string
	URL         string
	Description string
}

// IsTraining reports whether the card is the training sentinel.
func (c Card) IsTraining() bool {
	return c.ID == TrainingCardID
}

// CreationTime derives the card's creation instant from its identifier.
// The board encodes a 32-bit Unix timestamp (seconds) in the first 8 hex
// characters of every card id.
func (c Card) CreationTime() (time.Time, error) {
	return CreationTimeFromID(c.ID)
}

// CreationTimeFromID decodes the embedded creation timestamp of a card id.
func CreationTimeFromID(id string) (time.Time, error) {
	if len(id) < 8 {
		return time.Time{}, errors.New("card: id too short to carry a timestamp")
	}
	secs, err := strconv.ParseInt(id[:8], 16, 64)
	if err != nil {
		return time.Time{}, errors.New("card: id does not start with a hex timestamp")
	}
	return time.Unix(secs, 0).UTC(), nil
}

// Attachment is a file attached to a card on the external board.
type Attachment struct {
	ID       string
	FileName string
	MimeType string
	Bytes    int64
	Date     time.Time
	URL      string
}
