// Package clause tracks which clause templates are currently believed to be
// present in the open document, anchored by editor bookmarks.
package clause

import (
	"strings"
	"sync"
)

// bookmarkPrefix joins a clause id to its document bookmark. Removal and
// reconciliation both parse this prefix back out, so it is part of the
// protocol, not an implementation detail.
const bookmarkPrefix = "clause_"

// TrackedClause records the belief that a clause's content exists in the open
// document. Position is the editor-reported cursor offset at insertion time,
// advisory only.
type TrackedClause struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	BookmarkID string `json:"bookmarkId"`
}

// BookmarkID derives the document bookmark name for a clause id.
func BookmarkID(clauseID string) string {
	return bookmarkPrefix + clauseID
}

// ClauseID recovers the clause id from a bookmark name. ok is false when the
// bookmark does not follow the clause naming convention.
func ClauseID(bookmarkID string) (string, bool) {
	if !strings.HasPrefix(bookmarkID, bookmarkPrefix) {
		return "", false
	}
	id := bookmarkID[len(bookmarkPrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// Tracker is the sole owner of the tracked-clause list. The editor owns the
// actual bookmark set; the two are kept eventually consistent by Reconcile.
// All methods are safe for concurrent use: the reconciler runs on its own
// goroutine, so the list is mutex-guarded.
type Tracker struct {
	mu      sync.Mutex
	clauses []TrackedClause
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Add appends a tracked clause. Returns false without mutating when a clause
// with the same bookmark id is already tracked.
func (t *Tracker) Add(c TrackedClause) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.clauses {
		if existing.BookmarkID == c.BookmarkID {
			return false
		}
	}
	t.clauses = append(t.clauses, c)
	return true
}

// RemoveByBookmark drops the clause tracked under bookmarkID, reporting
// whether an entry was removed.
func (t *Tracker) RemoveByBookmark(bookmarkID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.clauses {
		if c.BookmarkID == bookmarkID {
			t.clauses = append(t.clauses[:i], t.clauses[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAll swaps the entire tracked list.
func (t *Tracker) ReplaceAll(clauses []TrackedClause) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clauses = append([]TrackedClause(nil), clauses...)
}

// Snapshot returns a copy of the tracked list.
func (t *Tracker) Snapshot() []TrackedClause {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TrackedClause(nil), t.clauses...)
}

// Len returns the number of tracked clauses.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clauses)
}

// Has reports whether a clause is tracked under bookmarkID.
func (t *Tracker) Has(bookmarkID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clauses {
		if c.BookmarkID == bookmarkID {
			return true
		}
	}
	return false
}

// Reconcile converges the tracked list with the editor's actual bookmark set:
// entries whose bookmark vanished are dropped (the user removed them through
// the editor UI), and clause_* bookmarks not yet tracked are adopted (the
// document was opened with pre-existing clauses). resolve maps a clause id to
// its display name; unknown ids get a placeholder. Reconcile never touches
// the editor and is idempotent. It reports whether the list changed.
func (t *Tracker) Reconcile(actual []string, resolve func(clauseID string) (string, bool)) bool {
	present := make(map[string]bool, len(actual))
	for _, b := range actual {
		present[b] = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false
	kept := t.clauses[:0]
	tracked := make(map[string]bool, len(t.clauses))
	for _, c := range t.clauses {
		if !present[c.BookmarkID] {
			changed = true
			continue
		}
		kept = append(kept, c)
		tracked[c.BookmarkID] = true
	}
	t.clauses = kept

	for _, bookmarkID := range actual {
		id, ok := ClauseID(bookmarkID)
		if !ok || tracked[bookmarkID] {
			continue
		}
		name := "Clause " + id
		if resolve != nil {
			if resolved, ok := resolve(id); ok {
				name = resolved
			}
		}
		t.clauses = append(t.clauses, TrackedClause{
			ID:         id,
			Name:       name,
			Position:   "0",
			BookmarkID: bookmarkID,
		})
		tracked[bookmarkID] = true
		changed = true
	}
	return changed
}
