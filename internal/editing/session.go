// Package editing implements the clause workflow against an open document:
// inserting clause templates at the cursor, removing them by bookmark, and
// keeping the tracked-clause list converged with the editor's actual bookmark
// set.
package editing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"testament/api/internal/catalog"
	"testament/api/internal/clause"
	"testament/api/internal/convert"
	"testament/api/internal/editor"
	"testament/api/internal/session"
)

// ErrClausePresent is returned when inserting a clause that is already
// tracked. Callers normally pre-filter with Available.
var ErrClausePresent = errors.New("clause already present in document")

// Converter produces editor-native paste payloads. Implemented by
// convert.Client.
type Converter interface {
	Import(ctx context.Context, docx []byte) (json.RawMessage, error)
	SystemClipboard(ctx context.Context, html string) (json.RawMessage, error)
}

// Options configures a Session.
type Options struct {
	Editor    editor.DocumentEditor
	Converter Converter
	Catalog   *catalog.Catalog
	// Backend uploads and fetches stored documents. Optional; Save fails
	// without it.
	Backend *Client
	// Store persists the tracked list between page loads. Optional.
	Store session.TrackerStore
	// ID identifies this editing session in the Store. Generated when
	// empty.
	ID string
	// SettleDelay is how long editor mutations are given to settle before
	// a deferred reconcile fires.
	SettleDelay time.Duration
	// VerifyDelay is how long to wait before verifying a bookmark
	// deletion took effect.
	VerifyDelay time.Duration
}

// Session owns one open document's clause workflow. Editor mutations within
// one Insert or Remove call are strictly sequential; the reconciler goroutine
// may interleave between calls, which the tracker's own locking and the
// idempotence of Reconcile make safe.
type Session struct {
	id      string
	editor  editor.DocumentEditor
	conv    Converter
	catalog *catalog.Catalog
	backend *Client
	store   session.TrackerStore
	tracker *clause.Tracker

	settleDelay time.Duration
	verifyDelay time.Duration
}

func NewSession(opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	settle := opts.SettleDelay
	if settle == 0 {
		settle = 500 * time.Millisecond
	}
	verify := opts.VerifyDelay
	if verify == 0 {
		verify = 200 * time.Millisecond
	}
	return &Session{
		id:          id,
		editor:      opts.Editor,
		conv:        opts.Converter,
		catalog:     opts.Catalog,
		backend:     opts.Backend,
		store:       opts.Store,
		tracker:     clause.NewTracker(),
		settleDelay: settle,
		verifyDelay: verify,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Tracked returns a snapshot of the clauses currently believed present.
func (s *Session) Tracked() []clause.TrackedClause {
	return s.tracker.Snapshot()
}

// TrackedCount returns the number of tracked clauses.
func (s *Session) TrackedCount() int {
	return s.tracker.Len()
}

// Available returns the catalog entries not already tracked, i.e. the
// candidates offered for insertion.
func (s *Session) Available() []catalog.ClauseTemplate {
	var out []catalog.ClauseTemplate
	for _, t := range s.catalog.Templates() {
		if !s.tracker.Has(clause.BookmarkID(t.ID)) {
			out = append(out, t)
		}
	}
	return out
}

// InsertClause inserts a clause template at the cursor and wraps exactly the
// inserted title-plus-content range with the clause bookmark: the start
// offset is captured before the title paste and the end offset after the
// content paste, then the bookmark is created over that explicit range. The
// trailing paragraph break stays outside the bookmark.
//
// On failure the tracked list is left untouched and already-applied editor
// mutations are not rolled back; a deferred reconcile is scheduled either way
// so any half-created bookmark converges.
func (s *Session) InsertClause(ctx context.Context, clauseID string) (clause.TrackedClause, error) {
	tmpl, ok := s.catalog.Lookup(clauseID)
	if !ok {
		return clause.TrackedClause{}, fmt.Errorf("unknown clause %q", clauseID)
	}
	bookmarkID := clause.BookmarkID(clauseID)
	if s.tracker.Has(bookmarkID) {
		return clause.TrackedClause{}, ErrClausePresent
	}

	sel := s.editor.Selection()
	ed := s.editor.Editing()

	fail := func(err error) (clause.TrackedClause, error) {
		s.scheduleReconcile()
		return clause.TrackedClause{}, err
	}

	position := sel.StartOffset()
	start := position

	titlePayload, err := s.conv.SystemClipboard(ctx, convert.FormattedHTML(tmpl.Name, true, true))
	if err != nil {
		return fail(fmt.Errorf("convert clause title: %w", err))
	}
	if err := ed.Paste(titlePayload); err != nil {
		return fail(fmt.Errorf("paste clause title: %w", err))
	}
	if err := ed.InsertText("\n"); err != nil {
		return fail(fmt.Errorf("insert title break: %w", err))
	}

	docxBytes, err := s.catalog.ReadTemplate(tmpl)
	if err != nil {
		return fail(err)
	}
	contentPayload, err := s.conv.Import(ctx, docxBytes)
	if err != nil {
		return fail(fmt.Errorf("convert clause content: %w", err))
	}
	if err := ed.Paste(contentPayload); err != nil {
		return fail(fmt.Errorf("paste clause content: %w", err))
	}
	end := sel.StartOffset()

	if err := ed.InsertText("\n"); err != nil {
		return fail(fmt.Errorf("insert trailing break: %w", err))
	}
	if err := sel.Select(start, end); err != nil {
		return fail(fmt.Errorf("select inserted range: %w", err))
	}
	if err := ed.InsertBookmark(bookmarkID); err != nil {
		return fail(fmt.Errorf("create bookmark %s: %w", bookmarkID, err))
	}
	sel.MoveToDocumentEnd()

	tracked := clause.TrackedClause{
		ID:         clauseID,
		Name:       tmpl.Name,
		Position:   position,
		BookmarkID: bookmarkID,
	}
	s.tracker.Add(tracked)
	s.persist(ctx)
	s.scheduleReconcile()
	return tracked, nil
}

// RemoveClause deletes a clause's content and bookmark from the document and
// untracks it. A bookmark missing from the editor means the entry was stale;
// it is untracked without error. Editor failures during deletion are not
// surfaced: a deferred reconcile converges the list with whatever state the
// document actually ended up in.
func (s *Session) RemoveClause(ctx context.Context, clauseID, bookmarkID string) error {
	bookmarks := s.editor.Bookmarks()
	if !contains(bookmarks, bookmarkID) {
		// Stale entry: nothing left in the document to delete.
		log.Printf("editing: bookmark %s not found, dropping stale entry for clause %s", bookmarkID, clauseID)
		s.tracker.RemoveByBookmark(bookmarkID)
		s.persist(ctx)
		return nil
	}

	sel := s.editor.Selection()
	ed := s.editor.Editing()

	err := func() error {
		if err := sel.SelectBookmark(bookmarkID); err != nil {
			return fmt.Errorf("select bookmark %s: %w", bookmarkID, err)
		}
		if err := ed.Delete(); err != nil {
			return fmt.Errorf("delete bookmark content: %w", err)
		}
		if err := ed.DeleteBookmark(bookmarkID); err != nil {
			return fmt.Errorf("delete bookmark %s: %w", bookmarkID, err)
		}
		sel.MoveToDocumentEnd()
		return nil
	}()
	if err != nil {
		log.Printf("editing: remove clause %s: %v", clauseID, err)
		s.scheduleReconcile()
		return nil
	}

	s.tracker.RemoveByBookmark(bookmarkID)
	s.persist(ctx)

	// The editor may report the deletion before it takes effect. Verify
	// after a short delay, retry once, then force a full reconcile.
	time.AfterFunc(s.verifyDelay, func() {
		if !contains(s.editor.Bookmarks(), bookmarkID) {
			return
		}
		log.Printf("editing: bookmark %s still present after delete, retrying", bookmarkID)
		if err := s.editor.Editing().DeleteBookmark(bookmarkID); err != nil {
			log.Printf("editing: retry delete bookmark %s: %v", bookmarkID, err)
		}
		s.scheduleReconcile()
	})
	return nil
}

// Reconcile converges the tracked list with the editor's actual bookmarks.
// Idempotent; never mutates the editor.
func (s *Session) Reconcile() {
	changed := s.tracker.Reconcile(s.editor.Bookmarks(), func(id string) (string, bool) {
		t, ok := s.catalog.Lookup(id)
		return t.Name, ok
	})
	if changed {
		s.persist(context.Background())
	}
}

// Open loads a document into the editor and schedules a deferred reconcile
// so clauses carried by pre-existing bookmarks are adopted once the document
// settles.
func (s *Session) Open(ctx context.Context, url string) error {
	if err := s.editor.Open(ctx, url); err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	s.scheduleReconcile()
	return nil
}

// OpenLatest opens the most recently stored document from the backend.
func (s *Session) OpenLatest(ctx context.Context) error {
	if s.backend == nil {
		return errors.New("no backend configured")
	}
	return s.Open(ctx, s.backend.LatestURL())
}

// Save exports the open document as DOCX and uploads it to the backend,
// returning the stored filename.
func (s *Session) Save(ctx context.Context) (string, error) {
	if s.backend == nil {
		return "", errors.New("no backend configured")
	}
	blob, err := s.editor.SaveAsBlob(ctx, "Docx")
	if err != nil {
		return "", fmt.Errorf("export document: %w", err)
	}
	filename, err := s.backend.Upload(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	return filename, nil
}

// Restore loads the tracked list persisted under this session id. Restored
// state is only a head start; the next reconcile pass overrides it with the
// document's actual bookmarks.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	clauses, err := s.store.Load(ctx, s.id)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session state: %w", err)
	}
	s.tracker.ReplaceAll(clauses)
	return nil
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.id, s.tracker.Snapshot()); err != nil {
		log.Printf("editing: persist session %s: %v", s.id, err)
	}
}

func (s *Session) scheduleReconcile() {
	time.AfterFunc(s.settleDelay, s.Reconcile)
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
