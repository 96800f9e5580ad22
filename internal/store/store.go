// Package store provides blob storage backends for uploaded documents.
package store

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrNotFound is returned when a named document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrEmpty is returned by Latest when no documents are stored.
	ErrEmpty = errors.New("no documents stored")
)

// DocumentContentType is the MIME type of stored DOCX blobs.
const DocumentContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// filenamePattern matches the generated document names.
var filenamePattern = regexp.MustCompile(`^document_\d+\.docx$`)

// BlobStore persists uploaded document blobs. The most recently written
// document wins; there is no index beyond the listing itself.
type BlobStore interface {
	// Save writes data verbatim under a generated timestamp-derived name
	// and returns that name.
	Save(ctx context.Context, data []byte) (string, error)
	// Get returns the raw bytes of a named document, or ErrNotFound.
	Get(ctx context.Context, filename string) ([]byte, error)
	// Latest returns the name of the most recently modified document, or
	// ErrEmpty when nothing is stored. Listing failures are reported as
	// ErrEmpty rather than propagated.
	Latest(ctx context.Context) (string, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}

// ValidFilename reports whether name matches the document_<millis>.docx
// naming scheme. Names outside the scheme are never served or listed.
func ValidFilename(name string) bool {
	return filenamePattern.MatchString(name)
}
