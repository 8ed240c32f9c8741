package card

import (
	"context"
	"errors"
	"fmt"
)

// Source port errors
var (
	// ErrSourceUnavailable indicates the external board could not be reached
	// or answered with a non-success status.
	ErrSourceUnavailable = errors.New("card: source unavailable")

	// ErrCardNotFound indicates the card does not exist on the board.
	ErrCardNotFound = errors.New("card: card not found on source")

	// ErrAttachmentTooLarge indicates the board rejected a direct upload
	// because of its size limit.
	ErrAttachmentTooLarge = errors.New("card: attachment exceeds source upload limit")
)

// FetchError wraps a failed read against the external board with the
// operation and card it targeted.
type FetchError struct {
	Op     string
	CardID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source fetch %s for card %s: %v", e.Op, e.CardID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with the fetch operation and card id.
func NewFetchError(op, cardID string, err error) *FetchError {
	return &FetchError{Op: op, CardID: cardID, Err: err}
}

// Source is the read/write port to the external task board.
type Source interface {
	// Attachments lists the files currently attached to the card.
	Attachments(ctx context.Context, cardID string) ([]Attachment, error)

	// Actions lists the card's activity records, decoded into tagged
	// Action values.
	Actions(ctx context.Context, cardID string) ([]Action, error)

	// UploadAttachment uploads file data directly to the card and returns
	// the created attachment.
	UploadAttachment(ctx context.Context, cardID, fileName, mimeType string, data []byte) (*Attachment, error)

	// AttachURL attaches an external link to the card, used for files that
	// exceed the board's direct upload limit.
	AttachURL(ctx context.Context, cardID, name, url string) (*Attachment, error)
}
