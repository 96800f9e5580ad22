package editing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		d.Debounce(func() { calls.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 call after burst, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32

	d.Debounce(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected cancelled call to never fire, got %d", got)
	}
}

func TestReconcilerNoteChange(t *testing.T) {
	ed := newFakeEditor("clause_revocation")
	s := newTestSession(t, ed, &fakeConverter{}, Options{})
	r := NewReconciler(s, time.Hour, 5*time.Millisecond)
	r.Attach()

	// Change events adopt the pre-existing bookmark after the debounce
	// window.
	ed.fireContentChange()

	deadline := time.Now().Add(time.Second)
	for s.TrackedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("change event never triggered a reconcile")
		}
		time.Sleep(5 * time.Millisecond)
	}
	tracked := s.Tracked()
	if tracked[0].ID != "revocation" {
		t.Errorf("unexpected adopted clause %+v", tracked[0])
	}
}

func TestReconcilerRunDropsVanishedClauses(t *testing.T) {
	ed := newFakeEditor("clause_revocation")
	s := newTestSession(t, ed, &fakeConverter{}, Options{})
	s.Reconcile()
	if s.TrackedCount() != 1 {
		t.Fatalf("expected 1 tracked clause before run, got %d", s.TrackedCount())
	}

	r := NewReconciler(s, 10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	ed.dropBookmark("clause_revocation")

	deadline := time.Now().Add(time.Second)
	for s.TrackedCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("periodic reconcile never dropped the vanished clause")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
