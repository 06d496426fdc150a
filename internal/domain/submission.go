// Package domain defines the core persistence models for the application.
package domain

import "time"

// Submission records the outcome of a previously processed SOS submission,
// keyed by the client-supplied Idempotency-Key. It enables safe retries of
// POST /sos_new: a retry within the TTL window returns the originally created
// ticket instead of classifying and inserting a duplicate.
type Submission struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_submission_key"`
	TicketID  int64     `gorm:"NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Submission) TableName() string { return "submissions" }
