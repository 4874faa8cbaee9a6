package domain

import (
	"context"
	"time"

	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	"github.com/meritworks/meritboard/internal/tier"
)

type CreatePeriodRequest struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
}

type AddCriterionRequest struct {
	PeriodID    string
	Name        string
	Description string
	Required    bool
}

type ExtendPeriodRequest struct {
	PeriodID string
	EndDate  time.Time
}

// PeriodDetail is a period with its ordered criteria.
type PeriodDetail struct {
	RatingPeriod
	Criteria []Criterion `json:"criteria"`
}

type SaveDraftRequest struct {
	PeriodID       string
	Responses      map[string]CriterionResponse
	SelfAssessment string
}

type ApproveRequest struct {
	RatingID       string
	FinalTier      tier.Tier
	ReviewerNotes  string
	PointsOverride *int64
}

type ReviewRequest struct {
	RatingID      string
	ReviewerNotes string
}

// Service is the rating workflow: period administration plus the
// self-rating state machine. Every call carries an explicit actor; there
// is no ambient session state inside the engine.
type Service interface {
	CreatePeriod(ctx context.Context, actor memberdomain.Actor, req CreatePeriodRequest) (RatingPeriod, error)
	AddCriterion(ctx context.Context, actor memberdomain.Actor, req AddCriterionRequest) (Criterion, error)
	ActivatePeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (RatingPeriod, error)
	CompletePeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (RatingPeriod, error)
	CancelPeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (RatingPeriod, error)
	ExtendPeriod(ctx context.Context, actor memberdomain.Actor, req ExtendPeriodRequest) (RatingPeriod, error)
	GetPeriod(ctx context.Context, periodID string) (PeriodDetail, error)
	ListPeriods(ctx context.Context) ([]RatingPeriod, error)

	SaveDraft(ctx context.Context, actor memberdomain.Actor, req SaveDraftRequest) (SelfRating, error)
	Submit(ctx context.Context, actor memberdomain.Actor, ratingID string) (SelfRating, error)
	Approve(ctx context.Context, actor memberdomain.Actor, req ApproveRequest) (SelfRating, error)
	Reject(ctx context.Context, actor memberdomain.Actor, req ReviewRequest) (SelfRating, error)
	RequestRevision(ctx context.Context, actor memberdomain.Actor, req ReviewRequest) (SelfRating, error)
	GetRating(ctx context.Context, ratingID string) (SelfRating, error)
	ListRatings(ctx context.Context, periodID string) ([]SelfRating, error)
}
