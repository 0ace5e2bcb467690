// Package archive stores opaque documents by slash-separated path on a
// local directory or an S3-compatible bucket.
package archive

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when nothing is stored at the path.
var ErrNotFound = errors.New("archive: object not found")

// Storage is a flat document store. Paths are slash-separated and
// relative to the store's root.
type Storage interface {
	// Write stores data at path, replacing any existing document.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the document at path, or an error matching ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns every document path under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
