package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the engine-level authorization role supplied by the identity
// subsystem.
type Role string

const (
	RoleMember   Role = "member"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleMember, RoleReviewer, RoleAdmin:
		return true
	default:
		return false
	}
}

// Member is a scored participant. Note there is no stored point total:
// scores are always derived from the ledger.
type Member struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	DisplayName string       `gorm:"type:text;not null" json:"display_name"`
	Email       string       `gorm:"type:text;not null" json:"email"`
	Unit        string       `gorm:"type:text;not null;index" json:"unit"`
	Role        Role         `gorm:"type:text;not null" json:"role"`
	JoinedAt    time.Time    `gorm:"not null" json:"joined_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }

// Actor identifies who is calling an engine operation. The identity
// subsystem resolves sessions upstream; the engine only sees explicit
// member id and role.
type Actor struct {
	MemberID string
	Role     Role
}
