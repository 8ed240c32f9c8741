package timeline

import (
	"fmt"
	"strings"
)

// FileKind is the coarse display classification of an associated file.
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindVideo    FileKind = "video"
	FileKindAudio    FileKind = "audio"
	FileKindDocument FileKind = "document"
	FileKindOther    FileKind = "other"
)

// AssociatedFile is a file linked to a milestone. URL points either at the
// board attachment or at the external object store, depending on where the
// upload was routed.
type AssociatedFile struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Kind  FileKind `json:"kind"`
	Size  string   `json:"size"`
	Bytes int64    `json:"bytes"`
	URL   string   `json:"url"`

	// Back-references to where the bytes live. At most one is set: the
	// board attachment id, or the object-store key for overflow uploads.
	SourceAttachmentID string `json:"source_attachment_id,omitempty"`
	SourceObjectKey    string `json:"source_object_key,omitempty"`
}

// FileKindFromMime classifies a MIME type for display.
func FileKindFromMime(mimeType string) FileKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileKindImage
	case strings.HasPrefix(mimeType, "video/"):
		return FileKindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return FileKindAudio
	case mimeType == "application/pdf",
		strings.HasPrefix(mimeType, "text/"),
		strings.Contains(mimeType, "word"),
		strings.Contains(mimeType, "spreadsheet"),
		strings.Contains(mimeType, "presentation"),
		strings.Contains(mimeType, "document"):
		return FileKindDocument
	default:
		return FileKindOther
	}
}

// HumanizeBytes renders a byte count the way the dashboard displays it.
func HumanizeBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
