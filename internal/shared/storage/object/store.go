package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes a stored object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, storageKey string) error
	// URL returns a stable retrieval URL for a stored object.
	URL(storageKey string) string
}
