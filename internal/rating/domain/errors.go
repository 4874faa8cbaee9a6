package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidTitle         = errors.New("invalid_title")
	ErrInvalidDateRange     = errors.New("invalid_date_range")
	ErrInvalidCriterionName = errors.New("invalid_criterion_name")
	ErrInvalidTier          = errors.New("invalid_tier")
	ErrInvalidOverride      = errors.New("invalid_points_override")
	ErrUnknownCriterion     = errors.New("unknown_criterion")

	ErrPeriodNotFound = errors.New("rating_period_not_found")
	ErrPeriodNotDraft = errors.New("rating_period_not_draft")
	// ErrPeriodStateConflict means a period lifecycle compare-and-set
	// found the period in a state the transition does not accept.
	ErrPeriodStateConflict = errors.New("rating_period_state_conflict")
	ErrPeriodNotActive     = errors.New("rating_period_not_active")
	ErrRatingNotFound      = errors.New("self_rating_not_found")
	// ErrRatingLocked means the (member, period) record is past editing:
	// a submitted or decided record is never silently overwritten.
	ErrRatingLocked = errors.New("self_rating_locked")

	ErrNotOwner     = errors.New("not_rating_owner")
	ErrMemberOnly   = errors.New("member_role_required")
	ErrReviewerOnly = errors.New("reviewer_role_required")
	ErrAdminOnly    = errors.New("admin_role_required")
)

// IncompleteSubmissionError reports which required criteria are unmet at
// submit time.
type IncompleteSubmissionError struct {
	Missing []string
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("incomplete submission: required criteria not met: %s", strings.Join(e.Missing, ", "))
}

// InvalidStateTransitionError reports a workflow precondition violation,
// including the state the record was actually in.
type InvalidStateTransitionError struct {
	Current   RatingStatus
	Attempted RatingStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: cannot move %s record to %s", e.Current, e.Attempted)
}
