// Package domain holds the self-assessment models: rating periods, their
// criteria, and the per-(member, period) self-rating driven through an
// explicit review state machine.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/tier"
	"gorm.io/datatypes"
)

// PeriodStatus is the lifecycle of a rating period.
type PeriodStatus string

const (
	PeriodStatusDraft     PeriodStatus = "draft"
	PeriodStatusActive    PeriodStatus = "active"
	PeriodStatusCompleted PeriodStatus = "completed"
	PeriodStatusCancelled PeriodStatus = "cancelled"
)

// RatingPeriod is an assessment window. Immutable once active, except
// that the end date may still be extended.
type RatingPeriod struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	StartDate time.Time    `gorm:"not null" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	Status    PeriodStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RatingPeriod) TableName() string { return "rating_periods" }

// Criterion is a single yes/no requirement inside one period.
type Criterion struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PeriodID    snowflake.ID `gorm:"not null;index" json:"period_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Required    bool         `gorm:"not null" json:"required"`
	Position    int          `gorm:"not null" json:"position"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Criterion) TableName() string { return "criteria" }

// RatingStatus is the review state machine. Approved and rejected are
// terminal; needs_revision loops back to editing.
type RatingStatus string

const (
	RatingStatusDraft         RatingStatus = "draft"
	RatingStatusSubmitted     RatingStatus = "submitted"
	RatingStatusApproved      RatingStatus = "approved"
	RatingStatusRejected      RatingStatus = "rejected"
	RatingStatusNeedsRevision RatingStatus = "needs_revision"
)

// CriterionResponse is a member's answer to one criterion.
type CriterionResponse struct {
	Met  bool   `json:"met"`
	Note string `json:"note,omitempty"`
}

// SelfRating is the per-(member, period) assessment record. PointsAwarded
// is set exactly when Status is approved, and the approval transaction in
// the ledger carries this record's id as its source.
type SelfRating struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	PeriodID       snowflake.ID   `gorm:"not null;uniqueIndex:ux_self_ratings_period_member,priority:1" json:"period_id"`
	MemberID       snowflake.ID   `gorm:"not null;index;uniqueIndex:ux_self_ratings_period_member,priority:2" json:"member_id"`
	Responses      datatypes.JSON `gorm:"not null" json:"responses"`
	SelfAssessment string         `gorm:"type:text;not null" json:"self_assessment"`
	SuggestedTier  tier.Tier      `gorm:"type:text;not null" json:"suggested_tier"`
	Status         RatingStatus   `gorm:"type:text;not null;index" json:"status"`
	FinalTier      *tier.Tier     `gorm:"type:text" json:"final_tier,omitempty"`
	ReviewerNotes  string         `gorm:"type:text;not null" json:"reviewer_notes"`
	PointsAwarded  *int64         `json:"points_awarded,omitempty"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SelfRating) TableName() string { return "self_ratings" }

// DecodeResponses unmarshals the stored criterion responses keyed by
// criterion id.
func (r *SelfRating) DecodeResponses() (map[string]CriterionResponse, error) {
	responses := make(map[string]CriterionResponse)
	if len(r.Responses) == 0 {
		return responses, nil
	}
	if err := json.Unmarshal(r.Responses, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// EncodeResponses marshals criterion responses for storage.
func EncodeResponses(responses map[string]CriterionResponse) (datatypes.JSON, error) {
	if responses == nil {
		responses = map[string]CriterionResponse{}
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// RewardPoints is the fixed per-tier award applied on approval unless the
// reviewer overrides it.
var RewardPoints = map[tier.Tier]int64{
	tier.Excellent: 10,
	tier.Good:      5,
	tier.Average:   2,
	tier.Poor:      1,
}

// Suggested-tier ratio cutoffs over met criteria.
const (
	SuggestExcellentRatio = 0.90
	SuggestGoodRatio      = 0.75
	SuggestAverageRatio   = 0.60
)

// SuggestTier maps the share of met criteria to a suggested tier. A period
// with zero criteria suggests the lowest tier.
func SuggestTier(metCount, criteriaCount int) tier.Tier {
	if criteriaCount <= 0 {
		return tier.Poor
	}
	ratio := float64(metCount) / float64(criteriaCount)
	switch {
	case ratio >= SuggestExcellentRatio:
		return tier.Excellent
	case ratio >= SuggestGoodRatio:
		return tier.Good
	case ratio >= SuggestAverageRatio:
		return tier.Average
	default:
		return tier.Poor
	}
}
