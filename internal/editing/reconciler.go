package editing

import (
	"context"
	"time"
)

// Reconciler drives the session's reconcile pass from two triggers: a fixed
// interval while at least one clause is tracked, and editor change events
// debounced so the editor gets a moment to settle. Both funnel into the same
// idempotent Session.Reconcile.
type Reconciler struct {
	session   *Session
	interval  time.Duration
	debouncer *Debouncer
}

func NewReconciler(s *Session, interval, debounce time.Duration) *Reconciler {
	if interval == 0 {
		interval = 3 * time.Second
	}
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	return &Reconciler{
		session:   s,
		interval:  interval,
		debouncer: NewDebouncer(debounce),
	}
}

// Attach registers the reconciler on the session's editor change events.
func (r *Reconciler) Attach() {
	r.session.editor.OnContentChange(r.NoteChange)
	r.session.editor.OnDocumentChange(r.NoteChange)
}

// NoteChange requests a reconcile after the debounce window.
func (r *Reconciler) NoteChange() {
	r.debouncer.Debounce(r.session.Reconcile)
}

// Run polls until ctx is cancelled. Ticks are skipped while nothing is
// tracked; change-triggered reconciles still run so pre-existing bookmarks
// are picked up.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.session.TrackedCount() > 0 {
				r.session.Reconcile()
			}
		}
	}
}
