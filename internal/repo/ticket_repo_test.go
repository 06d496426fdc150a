package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := fmt.Sprintf("file:ticketrepo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func seed(t *testing.T, s *SQLiteStore, label string, score int) *domain.Ticket {
	t.Helper()
	tk, err := s.Insert(context.Background(), &domain.Ticket{
		Text:          "report",
		Location:      "riverside",
		DisasterType:  label,
		PriorityScore: score,
		Status:        domain.StatusOpen,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return tk
}

func TestSQLiteStore_Insert_AssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)

	a := seed(t, s, "fire", 100)
	b := seed(t, s, "fire", 200)

	if a.ID <= 0 || b.ID <= a.ID {
		t.Fatalf("expected increasing ids, got %d then %d", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be stamped")
	}
}

func TestSQLiteStore_OpenByPriority_StableTies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := make([]int64, 0, 4)
	for _, score := range []int{300, 900, 900, 100} {
		ids = append(ids, seed(t, s, "flood", score).ID)
	}

	got, err := s.OpenByPriority(ctx)
	if err != nil {
		t.Fatalf("open by priority: %v", err)
	}
	want := []int64{ids[1], ids[2], ids[0], ids[3]}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestSQLiteStore_Close_Semantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tk := seed(t, s, "fire", 700)

	modified, err := s.Close(ctx, tk.ID)
	if err != nil || !modified {
		t.Fatalf("first close: modified=%v err=%v", modified, err)
	}
	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusClosed || got.ClosedAt == nil {
		t.Fatalf("ticket not closed: %+v", got)
	}

	// Re-close and missing id both report no modification.
	if modified, _ := s.Close(ctx, tk.ID); modified {
		t.Fatalf("re-close must not modify")
	}
	if modified, _ := s.Close(ctx, 99999); modified {
		t.Fatalf("missing id must not modify")
	}
}

func TestSQLiteStore_CountAndGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, "fire", 500)
	b := seed(t, s, "fire", 400)
	seed(t, s, "flood", 300)
	if _, err := s.Close(ctx, b.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	total, _ := s.Count(ctx, store.Filter{})
	open, _ := s.Count(ctx, store.StatusFilter(domain.StatusOpen))
	closed, _ := s.Count(ctx, store.StatusFilter(domain.StatusClosed))
	if total != 3 || open != 2 || closed != 1 {
		t.Fatalf("expected 3/2/1, got %d/%d/%d", total, open, closed)
	}

	buckets, err := s.CountsByDisasterType(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(buckets) != 2 || buckets[0].ID != "fire" || buckets[0].Count != 2 || buckets[1].ID != "flood" {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
}

func TestSQLiteStore_Totals_SingleSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, "fire", 500)
	b := seed(t, s, "fire", 400)
	seed(t, s, "flood", 300)
	if _, err := s.Close(ctx, b.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	tl, err := s.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if tl.Total != 3 || tl.Open != 2 {
		t.Fatalf("expected total 3 open 2, got %d/%d", tl.Total, tl.Open)
	}
	var sum int64
	for _, bucket := range tl.ByType {
		sum += bucket.Count
	}
	if sum != tl.Total {
		t.Fatalf("histogram sum %d disagrees with total %d", sum, tl.Total)
	}
	if len(tl.ByType) != 2 || tl.ByType[0].ID != "fire" || tl.ByType[0].Count != 2 {
		t.Fatalf("unexpected histogram: %+v", tl.ByType)
	}
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 123); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Submissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tk := seed(t, s, "fire", 800)
	sub := &domain.Submission{
		ID:        uuid.NewString(),
		Key:       "client-retry-1",
		TicketID:  tk.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := s.PutSubmission(ctx, sub); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetSubmission(ctx, "client-retry-1", now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TicketID != tk.ID {
		t.Fatalf("expected ticket %d, got %d", tk.ID, got.TicketID)
	}

	if _, err := s.GetSubmission(ctx, "client-retry-1", now.Add(2*time.Hour)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected expiry to behave as not found, got %v", err)
	}

	// Duplicate key refreshes the receipt instead of failing.
	dup := &domain.Submission{
		ID:        uuid.NewString(),
		Key:       "client-retry-1",
		TicketID:  tk.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(3 * time.Hour),
	}
	if err := s.PutSubmission(ctx, dup); err != nil {
		t.Fatalf("duplicate put: %v", err)
	}
	got, err = s.GetSubmission(ctx, "client-retry-1", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("get after refresh: %v", err)
	}
	if !got.ExpiresAt.After(now.Add(2 * time.Hour)) {
		t.Fatalf("expected refreshed expiry, got %v", got.ExpiresAt)
	}
}
