package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// MemoryStore is the process-lifetime ticket store: a mutex-guarded
// insertion-order slice plus an id index. All operations are short and
// in-memory, so one coarse lock covers every read and mutation without
// meaningful contention. Slow work (the classifier call) happens before any
// store method is entered, never while the lock is held.
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	tickets []*domain.Ticket         // insertion order, the tie-break for sorting
	byID    map[int64]*domain.Ticket // id index for Get/Close
	nextID  int64
	subs    map[string]domain.Submission // idempotency receipts by key
}

// NewMemoryStore returns an empty store. Ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[int64]*domain.Ticket),
		nextID: 1,
		subs:   make(map[string]domain.Submission),
	}
}

// Insert assigns the next monotonic id and appends the ticket. Ids are never
// reused, even conceptually after a restart (state is process-lifetime only).
func (s *MemoryStore) Insert(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	stored.ID = s.nextID
	s.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = domain.StatusOpen
	}

	s.tickets = append(s.tickets, &stored)
	s.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

// Get returns a copy of the ticket with the given id, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id int64) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

// OpenByPriority returns all open tickets sorted by priority score descending.
// The sort is stable: tickets with equal scores keep their insertion order.
func (s *MemoryStore) OpenByPriority(_ context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if t.Status == domain.StatusOpen {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	return out, nil
}

// Close transitions an open ticket to closed, recording ClosedAt. Closing a
// missing or already-closed ticket modifies nothing and returns false, which
// keeps the transition one-way and ClosedAt immutable after the first close.
func (s *MemoryStore) Close(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok || t.Status == domain.StatusClosed {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.StatusClosed
	t.ClosedAt = &now
	return true, nil
}

// Count returns the number of tickets matching the filter.
func (s *MemoryStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tickets {
		if matches(t, f) {
			n++
		}
	}
	return n, nil
}

// CountsByDisasterType groups tickets by their (already normalized) disaster
// label and returns buckets sorted by count descending, then label ascending
// so equal counts have a deterministic order.
func (s *MemoryStore) CountsByDisasterType(_ context.Context) ([]domain.DisasterTypeCount, error) {
	s.mu.Lock()
	out := s.typeCountsLocked()
	s.mu.Unlock()
	return out, nil
}

// Totals computes the aggregate under one lock acquisition so total, open,
// and the histogram describe the same instant.
func (s *MemoryStore) Totals(_ context.Context) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl := Totals{Total: int64(len(s.tickets))}
	for _, t := range s.tickets {
		if t.Status == domain.StatusOpen {
			tl.Open++
		}
	}
	tl.ByType = s.typeCountsLocked()
	return tl, nil
}

// typeCountsLocked builds the sorted disaster-type histogram. Callers hold
// s.mu.
func (s *MemoryStore) typeCountsLocked() []domain.DisasterTypeCount {
	counts := make(map[string]int64)
	for _, t := range s.tickets {
		counts[t.DisasterType]++
	}
	out := make([]domain.DisasterTypeCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.DisasterTypeCount{ID: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// All returns a snapshot of every ticket in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	return out, nil
}

// GetSubmission returns the receipt for key when it has not expired.
func (s *MemoryStore) GetSubmission(_ context.Context, key string, now time.Time) (*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[key]
	if !ok || !sub.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	out := sub
	return &out, nil
}

// PutSubmission stores (or refreshes) a receipt for sub.Key.
func (s *MemoryStore) PutSubmission(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.Key] = *sub
	return nil
}

// matches reports whether t satisfies every set field of f.
func matches(t *domain.Ticket, f Filter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DisasterType != nil && t.DisasterType != *f.DisasterType {
		return false
	}
	return true
}
