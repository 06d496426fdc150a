// Package domain defines the persistence models for SOS tickets and
// submission receipts. These types are mapped with GORM for the SQLite
// store backend and serialized as-is on the HTTP surface.
package domain

import "time"

// TicketStatus is the lifecycle state of a ticket. Transitions are one-way:
// a ticket starts open and may move to closed exactly once.
type TicketStatus string

// Ticket status values.
const (
	StatusOpen   TicketStatus = "open"
	StatusClosed TicketStatus = "closed"
)

// Priority score bounds and the fallback used when the classifier returns
// nothing usable.
const (
	MinPriorityScore     = 1
	MaxPriorityScore     = 1000
	DefaultPriorityScore = 500
)

// Ticket represents one stored emergency report together with its AI
// classification and lifecycle state.
//
// Fields:
//   - ID: store-assigned, monotonically increasing; serialized as a string
//     on the wire ("1", "2", ...).
//   - Text / Location: the raw report; both required and non-blank.
//   - DisasterType: normalized short label, "unknown" when classification
//     degraded.
//   - PriorityScore: always within [1,1000]; higher is more urgent.
//   - PriorityReason / Explanation: classifier prose; fallback text when the
//     gateway degraded.
//   - Status: open or closed; CreatedAt is immutable, ClosedAt is set once on
//     the open→closed transition.
type Ticket struct {
	ID             int64        `json:"id,string"        gorm:"primaryKey;autoIncrement"`
	Text           string       `json:"text"             gorm:"type:text;not null"`
	Location       string       `json:"location"         gorm:"type:varchar(255);not null"`
	DisasterType   string       `json:"disaster_type"    gorm:"type:varchar(64);not null;index"`
	PriorityScore  int          `json:"priority_score"   gorm:"not null;index"`
	PriorityReason string       `json:"priority_reason"  gorm:"type:text"`
	Explanation    string       `json:"explanation"      gorm:"type:text"`
	Status         TicketStatus `json:"status"           gorm:"type:varchar(16);not null;check:status IN ('open','closed');index"`
	CreatedAt      time.Time    `json:"timestamp"`
	ClosedAt       *time.Time   `json:"closed_at,omitempty"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "tickets" }

// IsOpen reports whether the ticket is still awaiting response.
func (t *Ticket) IsOpen() bool { return t.Status == StatusOpen }

// DisasterTypeCount is one histogram bucket of the stats aggregation:
// a distinct disaster-type label and how many tickets carry it. The wire
// field "_id" mirrors the label key of the original aggregation output.
type DisasterTypeCount struct {
	ID    string `json:"_id"   gorm:"column:disaster_type"`
	Count int64  `json:"count" gorm:"column:count"`
}
