// Package repo implements the SQLite-backed ticket store. This file provides
// the SQLiteStore type, a GORM implementation of store.Store.
//
// Error semantics:
//   - When a ticket is not found, methods return store.ErrNotFound so callers
//     never need to know about gorm.ErrRecordNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.), the
//     raw gorm error is propagated.
//
// Ordering:
//   - Ids are assigned by SQLite's autoincrement rowid, so "ORDER BY
//     priority_score DESC, id ASC" reproduces the stable insertion-order
//     tie-break of the in-memory store.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/store"
)

// SQLiteStore is the persistent store.Store implementation.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore wraps an opened GORM handle. Callers run AutoMigrate first.
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert persists the ticket and returns the stored record with its
// DB-assigned id. CreatedAt is stamped in UTC when unset.
func (s *SQLiteStore) Insert(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	stored := *t
	stored.ID = 0 // let autoincrement assign
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = domain.StatusOpen
	}
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get fetches a ticket by id, or store.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	var t domain.Ticket
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// OpenByPriority returns all open tickets, priority descending, ids ascending
// on equal scores.
func (s *SQLiteStore) OpenByPriority(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.StatusOpen).
		Order("priority_score DESC, id ASC").
		Find(&out).Error
	return out, err
}

// Close flips an open ticket to closed in a single conditional UPDATE, so the
// open→closed transition cannot race and ClosedAt is written exactly once.
// Missing ids and already-closed tickets report no modification.
func (s *SQLiteStore) Close(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("id = ? AND status = ?", id, domain.StatusOpen).
		Updates(map[string]any{"status": domain.StatusClosed, "closed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of tickets matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, f store.Filter) (int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Ticket{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.DisasterType != nil {
		q = q.Where("disaster_type = ?", *f.DisasterType)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountsByDisasterType groups tickets by label, most frequent first.
func (s *SQLiteStore) CountsByDisasterType(ctx context.Context) ([]domain.DisasterTypeCount, error) {
	var out []domain.DisasterTypeCount
	err := s.db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Select("disaster_type, COUNT(*) AS count").
		Group("disaster_type").
		Order("count DESC, disaster_type ASC").
		Scan(&out).Error
	return out, err
}

// Totals runs the three aggregate queries inside one transaction, so the
// counts and the histogram describe the same committed state even while
// inserts and closes land concurrently.
func (s *SQLiteStore) Totals(ctx context.Context) (store.Totals, error) {
	var out store.Totals
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Ticket{}).Count(&out.Total).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Ticket{}).
			Where("status = ?", domain.StatusOpen).
			Count(&out.Open).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Ticket{}).
			Select("disaster_type, COUNT(*) AS count").
			Group("disaster_type").
			Order("count DESC, disaster_type ASC").
			Scan(&out.ByType).Error
	})
	return out, err
}

// All returns every ticket in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}
