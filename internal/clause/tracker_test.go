package clause

import (
	"reflect"
	"testing"
)

func TestBookmarkIDRoundTrip(t *testing.T) {
	bookmarkID := BookmarkID("revocation")
	if bookmarkID != "clause_revocation" {
		t.Fatalf("expected clause_revocation, got %s", bookmarkID)
	}

	id, ok := ClauseID(bookmarkID)
	if !ok || id != "revocation" {
		t.Fatalf("expected revocation, got %q ok=%v", id, ok)
	}
}

func TestClauseIDRejectsForeignBookmarks(t *testing.T) {
	for _, name := range []string{"_GoBack", "clause_", "revocation", ""} {
		if id, ok := ClauseID(name); ok {
			t.Errorf("expected %q to be rejected, got id %q", name, id)
		}
	}
}

func TestAddRejectsDuplicateBookmark(t *testing.T) {
	tracker := NewTracker()
	c := TrackedClause{ID: "revocation", Name: "Revocation", Position: "12", BookmarkID: "clause_revocation"}

	if !tracker.Add(c) {
		t.Fatalf("first add should succeed")
	}
	if tracker.Add(c) {
		t.Fatalf("duplicate add should be rejected")
	}
	if tracker.Len() != 1 {
		t.Fatalf("expected 1 tracked clause, got %d", tracker.Len())
	}
}

func TestRemoveByBookmark(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(TrackedClause{ID: "a", BookmarkID: "clause_a"})
	tracker.Add(TrackedClause{ID: "b", BookmarkID: "clause_b"})

	if !tracker.RemoveByBookmark("clause_a") {
		t.Fatalf("expected removal of clause_a")
	}
	if tracker.RemoveByBookmark("clause_a") {
		t.Fatalf("second removal should report nothing removed")
	}
	if tracker.Has("clause_a") || !tracker.Has("clause_b") {
		t.Fatalf("unexpected tracked set: %v", tracker.Snapshot())
	}
}

func TestReconcileDropsMissingBookmarks(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(TrackedClause{ID: "a", BookmarkID: "clause_a"})
	tracker.Add(TrackedClause{ID: "b", BookmarkID: "clause_b"})

	changed := tracker.Reconcile([]string{"clause_b"}, nil)
	if !changed {
		t.Fatalf("expected reconcile to report a change")
	}

	snapshot := tracker.Snapshot()
	if len(snapshot) != 1 || snapshot[0].BookmarkID != "clause_b" {
		t.Fatalf("expected only clause_b to survive, got %v", snapshot)
	}
}

func TestReconcileAdoptsForeignClauseBookmarks(t *testing.T) {
	tracker := NewTracker()
	resolve := func(id string) (string, bool) {
		if id == "revocation" {
			return "Revocation", true
		}
		return "", false
	}

	tracker.Reconcile([]string{"clause_revocation", "clause_mystery", "_GoBack"}, resolve)

	snapshot := tracker.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 adopted clauses, got %v", snapshot)
	}
	if snapshot[0].Name != "Revocation" || snapshot[0].ID != "revocation" {
		t.Errorf("catalog clause adopted wrong: %+v", snapshot[0])
	}
	if snapshot[1].Name != "Clause mystery" || snapshot[1].ID != "mystery" {
		t.Errorf("unknown clause should get placeholder name: %+v", snapshot[1])
	}
	if snapshot[0].Position != "0" || snapshot[1].Position != "0" {
		t.Errorf("adopted clauses should carry position 0: %v", snapshot)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(TrackedClause{ID: "a", BookmarkID: "clause_a"})
	actual := []string{"clause_a", "clause_b"}

	tracker.Reconcile(actual, nil)
	first := tracker.Snapshot()

	if changed := tracker.Reconcile(actual, nil); changed {
		t.Fatalf("second reconcile with same bookmarks should not change anything")
	}
	second := tracker.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical tracked lists, got %v then %v", first, second)
	}
}

func TestReplaceAllCopiesInput(t *testing.T) {
	tracker := NewTracker()
	input := []TrackedClause{{ID: "a", BookmarkID: "clause_a"}}
	tracker.ReplaceAll(input)

	input[0].ID = "mutated"
	if tracker.Snapshot()[0].ID != "a" {
		t.Fatalf("ReplaceAll should copy its input")
	}
}
