// Package repo implements the SQLite-backed ticket store. This file provides
// the submission-receipt persistence used for safe retries of POST /sos_new.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/store"
)

// GetSubmission returns a non-expired receipt for key, or store.ErrNotFound.
func (s *SQLiteStore) GetSubmission(ctx context.Context, key string, now time.Time) (*domain.Submission, error) {
	if strings.TrimSpace(key) == "" {
		return nil, store.ErrNotFound
	}
	var rec domain.Submission
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutSubmission upserts the receipt for sub.Key. A unique violation means a
// concurrent retry already recorded the same key; both point at the same
// created ticket, so the row is refreshed rather than treated as a failure.
func (s *SQLiteStore) PutSubmission(ctx context.Context, sub *domain.Submission) error {
	err := s.db.WithContext(ctx).Create(sub).Error
	if err == nil {
		return nil
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") {
		return s.db.WithContext(ctx).
			Model(&domain.Submission{}).
			Where("key = ?", sub.Key).
			Updates(map[string]any{
				"ticket_id":  sub.TicketID,
				"expires_at": sub.ExpiresAt,
			}).Error
	}
	return err
}
