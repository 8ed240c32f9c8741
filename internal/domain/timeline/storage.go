package timeline

import "context"

// ObjectStore is the port to the external object store used for files too
// large for a direct board upload.
type ObjectStore interface {
	// Upload stores the data under key and returns a publicly resolvable
	// URL for it.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
