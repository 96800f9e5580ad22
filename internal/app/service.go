package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"testament/api/internal/catalog"
	"testament/api/internal/clause"
	"testament/api/internal/config"
	"testament/api/internal/docx"
	"testament/api/internal/search"
	"testament/api/internal/session"
	"testament/api/internal/store"
)

// Service wires the storage backend, the clause catalog, catalog search and
// the editing-session state store behind the HTTP surface.
type Service struct {
	cfg      config.Config
	blobs    store.BlobStore
	catalog  *catalog.Catalog
	search   *search.Service
	sessions session.TrackerStore
}

func New(cfg config.Config, blobs store.BlobStore, cat *catalog.Catalog, searchSvc *search.Service, sessions session.TrackerStore) *Service {
	return &Service{
		cfg:      cfg,
		blobs:    blobs,
		catalog:  cat,
		search:   searchSvc,
		sessions: sessions,
	}
}

// Ping probes the storage backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.blobs.Ping(ctx)
}

// SaveDocument persists an uploaded blob and returns the generated filename.
func (s *Service) SaveDocument(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domainError(http.StatusBadRequest, "EMPTY_FILE", "Uploaded file is empty")
	}
	filename, err := s.blobs.Save(ctx, data)
	if err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	log.Printf("app: document saved as %s (%d bytes)", filename, len(data))
	return filename, nil
}

// GetDocument returns the raw bytes of a stored document.
func (s *Service) GetDocument(ctx context.Context, filename string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, filename)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return data, nil
}

// LatestDocument returns the most recently stored document and its name.
func (s *Service) LatestDocument(ctx context.Context) (string, []byte, error) {
	filename, err := s.blobs.Latest(ctx)
	if errors.Is(err, store.ErrEmpty) {
		return "", nil, domainError(http.StatusNotFound, "NO_DOCUMENTS", "No documents found")
	}
	if err != nil {
		return "", nil, fmt.Errorf("find latest document: %w", err)
	}
	data, err := s.GetDocument(ctx, filename)
	if err != nil {
		return "", nil, err
	}
	return filename, data, nil
}

// DocumentClauses scans a stored document for clause bookmarks and maps them
// back to catalog entries, placeholder-named when the id is unknown.
func (s *Service) DocumentClauses(ctx context.Context, filename string) ([]clause.TrackedClause, error) {
	data, err := s.GetDocument(ctx, filename)
	if err != nil {
		return nil, err
	}
	bookmarks, err := docx.ClauseBookmarks(data)
	if err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_DOCX", "Stored file is not a readable DOCX archive")
	}

	clauses := make([]clause.TrackedClause, 0, len(bookmarks))
	for _, bookmarkID := range bookmarks {
		id, ok := clause.ClauseID(bookmarkID)
		if !ok {
			continue
		}
		name := "Clause " + id
		if t, ok := s.catalog.Lookup(id); ok {
			name = t.Name
		}
		clauses = append(clauses, clause.TrackedClause{
			ID:         id,
			Name:       name,
			Position:   "0",
			BookmarkID: bookmarkID,
		})
	}
	return clauses, nil
}

// Clauses returns the full catalog.
func (s *Service) Clauses() []catalog.ClauseTemplate {
	return s.catalog.Templates()
}

// Clause returns a single catalog entry.
func (s *Service) Clause(id string) (catalog.ClauseTemplate, error) {
	t, ok := s.catalog.Lookup(id)
	if !ok {
		return catalog.ClauseTemplate{}, domainError(http.StatusNotFound, "NOT_FOUND", "Clause not found")
	}
	return t, nil
}

// ClauseTemplate returns a clause's DOCX bytes. When tagged is set the blob
// is wrapped with its own clause bookmark before serving, so the editor-side
// tracker can locate it after a plain import.
func (s *Service) ClauseTemplate(id string, tagged bool) ([]byte, error) {
	t, err := s.Clause(id)
	if err != nil {
		return nil, err
	}
	data, err := s.catalog.ReadTemplate(t)
	if err != nil {
		return nil, fmt.Errorf("read clause template: %w", err)
	}
	if !tagged {
		return data, nil
	}
	wrapped, err := docx.Tag(data, clause.BookmarkID(id))
	if err != nil {
		return nil, fmt.Errorf("tag clause template: %w", err)
	}
	return wrapped, nil
}

// SearchClauses runs a catalog search.
func (s *Service) SearchClauses(q search.Query) search.Response {
	return s.search.Search(q)
}

// SessionClauses returns the tracked-clause list persisted for an editing
// session.
func (s *Service) SessionClauses(ctx context.Context, sessionID string) ([]clause.TrackedClause, error) {
	clauses, err := s.sessions.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}
	return clauses, nil
}

// SaveSessionClauses persists an editing session's tracked-clause list.
func (s *Service) SaveSessionClauses(ctx context.Context, sessionID string, clauses []clause.TrackedClause) error {
	if err := s.sessions.Save(ctx, sessionID, clauses); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

// DeleteSessionClauses drops an editing session's persisted state.
func (s *Service) DeleteSessionClauses(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}
