// Package editor defines the capability boundary around the embedded
// rich-text document editor. The editor itself is a black box; this interface
// enumerates exactly the operations the clause workflow needs, so any editing
// component can be substituted behind it without touching the tracker or the
// reconciliation loop.
package editor

import (
	"context"
	"encoding/json"
)

// DocumentEditor is the opaque editing capability. The editor independently
// owns the document's actual bookmark set; Bookmarks reads it but nothing
// here observes its internal lifecycle transactionally.
type DocumentEditor interface {
	// Open loads a document into the editor from a URL. The open document
	// is a copy of the fetched blob, not a live reference to storage.
	Open(ctx context.Context, url string) error
	// SaveAsBlob exports the open document in the given format ("Docx").
	SaveAsBlob(ctx context.Context, format string) ([]byte, error)
	// Bookmarks returns the names of all bookmarks currently in the
	// document.
	Bookmarks() []string

	Selection() Selection
	Editing() Editing

	// OnContentChange registers a callback fired on every content change.
	OnContentChange(fn func())
	// OnDocumentChange registers a callback fired when a document is
	// opened or replaced.
	OnDocumentChange(fn func())
}

// Selection exposes the editor's cursor and range primitives.
type Selection interface {
	// SelectBookmark selects the range covered by a named bookmark.
	SelectBookmark(name string) error
	// StartOffset returns the editor-native offset of the selection start.
	StartOffset() string
	// Select selects the range between two editor-native offsets.
	Select(start, end string) error
	// MoveToDocumentEnd collapses the selection to the end of the document.
	MoveToDocumentEnd()
}

// Editing exposes the editor's mutation primitives. Paste payloads are
// editor-native documents produced by the conversion collaborator.
type Editing interface {
	InsertBookmark(name string) error
	DeleteBookmark(name string) error
	// Delete removes the current selection's content.
	Delete() error
	InsertText(text string) error
	Paste(payload json.RawMessage) error
}
