// Package session provides storage backends for editing-session state: the
// tracked-clause list each open editing session believes in. Restored state
// is advisory; the reconciliation loop remains authoritative once the
// document is open.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"testament/api/internal/clause"
)

// ErrNotFound is returned when no state is stored for a session.
var ErrNotFound = errors.New("session state not found")

// TrackerStore persists the tracked-clause list of an editing session.
type TrackerStore interface {
	Save(ctx context.Context, sessionID string, clauses []clause.TrackedClause) error
	Load(ctx context.Context, sessionID string) ([]clause.TrackedClause, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps session state in process memory. Entries expire lazily
// on read.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	clauses   []clause.TrackedClause
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store. ttl <= 0 means entries never
// expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, clauses []clause.TrackedClause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{clauses: append([]clause.TrackedClause(nil), clauses...)}
	if s.ttl > 0 {
		entry.expiresAt = time.Now().Add(s.ttl)
	}
	s.entries[sessionID] = entry
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]clause.TrackedClause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return nil, ErrNotFound
	}
	return append([]clause.TrackedClause(nil), entry.clauses...), nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
