// Package domain holds the append-only point ledger model. A member's
// total score is always the sum of their transaction deltas; no running
// total is stored anywhere.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TransactionKind categorizes a point-changing event.
type TransactionKind string

const (
	KindEarn    TransactionKind = "earn"    // verified activity check-in
	KindBonus   TransactionKind = "bonus"   // rating approval or manual bonus
	KindDeduct  TransactionKind = "deduct"  // manual adjustment downward
	KindPenalty TransactionKind = "penalty" // disciplinary deduction
)

// ValidKind reports whether k is a known transaction kind.
func ValidKind(k TransactionKind) bool {
	switch k {
	case KindEarn, KindBonus, KindDeduct, KindPenalty:
		return true
	default:
		return false
	}
}

// PointTransaction is an immutable ledger row. Rows are inserted once and
// never updated or deleted. The unique index over (member_id, kind,
// source_activity_id) backstops at-most-once posting per source; rows
// without a source are exempt (NULLs do not collide).
type PointTransaction struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	MemberID         snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_point_transactions_source,priority:1" json:"member_id"`
	Delta            int64           `gorm:"not null" json:"delta"`
	Kind             TransactionKind `gorm:"type:text;not null;uniqueIndex:ux_point_transactions_source,priority:2" json:"kind"`
	Reason           string          `gorm:"type:text;not null" json:"reason"`
	SourceActivityID *snowflake.ID   `gorm:"index;uniqueIndex:ux_point_transactions_source,priority:3" json:"source_activity_id,omitempty"`
	OccurredAt       time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PointTransaction) TableName() string { return "point_transactions" }
