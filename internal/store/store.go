// Package store defines the ticket store contract and its in-memory
// implementation. The contract is intentionally narrow: field-equality
// filters, one sort key (priority, descending, insertion-order ties), and one
// group-by key (disaster type). Call sites never depend on the storage
// mechanism, so the in-memory store and the SQLite-backed repo implementation
// are interchangeable.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// ErrNotFound is returned when a requested ticket does not exist.
var ErrNotFound = errors.New("ticket not found")

// Filter is a typed field-equality predicate over tickets. Nil fields match
// everything; set fields must all match (logical AND).
type Filter struct {
	Status       *domain.TicketStatus
	DisasterType *string
}

// StatusFilter returns a Filter matching tickets in the given status.
func StatusFilter(s domain.TicketStatus) Filter {
	return Filter{Status: &s}
}

// Totals is an aggregate of the ticket population taken from one consistent
// view of the store: Total always equals open plus closed tickets at the
// moment of the snapshot, and ByType sums to Total.
type Totals struct {
	Total  int64
	Open   int64
	ByType []domain.DisasterTypeCount
}

// Store is the persistence contract for tickets and submission receipts.
//
// Implementations must serialize mutations against concurrent reads so a
// half-updated record is never observed, and must assign unique, monotonically
// increasing ids on insert. All returned slices are eagerly materialized
// snapshots; callers may retain and mutate them freely.
type Store interface {
	// Insert assigns the next id, stamps CreatedAt if unset, appends the
	// ticket, and returns the stored record.
	Insert(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)

	// Get fetches a ticket by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.Ticket, error)

	// OpenByPriority returns all open tickets ordered by priority score
	// descending. Ties keep insertion order (stable sort).
	OpenByPriority(ctx context.Context) ([]domain.Ticket, error)

	// Close transitions an open ticket to closed and records ClosedAt.
	// It reports whether a modification occurred: closing a missing id or an
	// already-closed ticket is a no-op returning false.
	Close(ctx context.Context, id int64) (bool, error)

	// Count returns the number of tickets matching the filter.
	Count(ctx context.Context, f Filter) (int64, error)

	// CountsByDisasterType returns one bucket per distinct disaster-type
	// label, sorted by count descending (label ascending on equal counts).
	CountsByDisasterType(ctx context.Context) ([]domain.DisasterTypeCount, error)

	// Totals returns the count aggregate from a single consistent view, so
	// concurrent writes cannot make the parts disagree.
	Totals(ctx context.Context) (Totals, error)

	// All returns every ticket in insertion order. Used by the search path.
	All(ctx context.Context) ([]domain.Ticket, error)

	// GetSubmission returns the non-expired submission receipt for key, or
	// ErrNotFound.
	GetSubmission(ctx context.Context, key string, now time.Time) (*domain.Submission, error)

	// PutSubmission records a submission receipt. A receipt for an existing
	// key overwrites the expired one; concurrent duplicates are harmless
	// because both map to the same created ticket.
	PutSubmission(ctx context.Context, sub *domain.Submission) error
}
