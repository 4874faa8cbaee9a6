package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"go.uber.org/zap"
)

func (s *Service) CreatePeriod(ctx context.Context, actor memberdomain.Actor, req ratingdomain.CreatePeriodRequest) (ratingdomain.RatingPeriod, error) {
	if actor.Role != memberdomain.RoleAdmin {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrAdminOnly
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrInvalidTitle
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrInvalidDateRange
	}

	now := s.clock.Now()
	period := ratingdomain.RatingPeriod{
		ID:        s.genID.Generate(),
		Title:     title,
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate.UTC(),
		Status:    ratingdomain.PeriodStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Create(&period).Error; err != nil {
		return ratingdomain.RatingPeriod{}, err
	}

	s.log.Info("rating period created",
		zap.String("period_id", period.ID.String()),
		zap.String("title", period.Title),
	)
	return period, nil
}

func (s *Service) AddCriterion(ctx context.Context, actor memberdomain.Actor, req ratingdomain.AddCriterionRequest) (ratingdomain.Criterion, error) {
	if actor.Role != memberdomain.RoleAdmin {
		return ratingdomain.Criterion{}, ratingdomain.ErrAdminOnly
	}

	periodID, err := parseID(req.PeriodID)
	if err != nil {
		return ratingdomain.Criterion{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ratingdomain.Criterion{}, ratingdomain.ErrInvalidCriterionName
	}

	period, err := s.loadPeriod(ctx, s.db, periodID)
	if err != nil {
		return ratingdomain.Criterion{}, err
	}
	if period == nil {
		return ratingdomain.Criterion{}, ratingdomain.ErrPeriodNotFound
	}
	// Criteria are frozen once the period activates.
	if period.Status != ratingdomain.PeriodStatusDraft {
		return ratingdomain.Criterion{}, ratingdomain.ErrPeriodNotDraft
	}

	var position int64
	err = s.db.WithContext(ctx).
		Model(&ratingdomain.Criterion{}).
		Where("period_id = ?", periodID).
		Count(&position).Error
	if err != nil {
		return ratingdomain.Criterion{}, err
	}

	criterion := ratingdomain.Criterion{
		ID:          s.genID.Generate(),
		PeriodID:    periodID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Required:    req.Required,
		Position:    int(position) + 1,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&criterion).Error; err != nil {
		return ratingdomain.Criterion{}, err
	}
	return criterion, nil
}

func (s *Service) ActivatePeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (ratingdomain.RatingPeriod, error) {
	return s.movePeriod(ctx, actor, periodID, ratingdomain.PeriodStatusDraft, ratingdomain.PeriodStatusActive)
}

func (s *Service) CompletePeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (ratingdomain.RatingPeriod, error) {
	return s.movePeriod(ctx, actor, periodID, ratingdomain.PeriodStatusActive, ratingdomain.PeriodStatusCompleted)
}

func (s *Service) CancelPeriod(ctx context.Context, actor memberdomain.Actor, periodID string) (ratingdomain.RatingPeriod, error) {
	id, err := s.checkPeriodAdmin(actor, periodID)
	if err != nil {
		return ratingdomain.RatingPeriod{}, err
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.RatingPeriod{}).
		Where("id = ? AND status IN ?", id, []ratingdomain.PeriodStatus{ratingdomain.PeriodStatusDraft, ratingdomain.PeriodStatusActive}).
		Updates(map[string]any{"status": ratingdomain.PeriodStatusCancelled, "updated_at": now})
	if result.Error != nil {
		return ratingdomain.RatingPeriod{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.RatingPeriod{}, s.periodConflict(ctx, id)
	}

	return s.reloadPeriod(ctx, id)
}

func (s *Service) ExtendPeriod(ctx context.Context, actor memberdomain.Actor, req ratingdomain.ExtendPeriodRequest) (ratingdomain.RatingPeriod, error) {
	id, err := s.checkPeriodAdmin(actor, req.PeriodID)
	if err != nil {
		return ratingdomain.RatingPeriod{}, err
	}

	period, err := s.loadPeriod(ctx, s.db, id)
	if err != nil {
		return ratingdomain.RatingPeriod{}, err
	}
	if period == nil {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrPeriodNotFound
	}
	if period.Status != ratingdomain.PeriodStatusActive {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrPeriodNotActive
	}
	// Extending is the only mutation allowed after activation; the new
	// end must not shrink the window.
	if req.EndDate.IsZero() || !req.EndDate.After(period.EndDate) {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrInvalidDateRange
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.RatingPeriod{}).
		Where("id = ? AND status = ?", id, ratingdomain.PeriodStatusActive).
		Updates(map[string]any{"end_date": req.EndDate.UTC(), "updated_at": now})
	if result.Error != nil {
		return ratingdomain.RatingPeriod{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrPeriodNotActive
	}

	return s.reloadPeriod(ctx, id)
}

func (s *Service) movePeriod(ctx context.Context, actor memberdomain.Actor, periodID string, from, to ratingdomain.PeriodStatus) (ratingdomain.RatingPeriod, error) {
	id, err := s.checkPeriodAdmin(actor, periodID)
	if err != nil {
		return ratingdomain.RatingPeriod{}, err
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.RatingPeriod{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now})
	if result.Error != nil {
		return ratingdomain.RatingPeriod{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.RatingPeriod{}, s.periodConflict(ctx, id)
	}

	s.log.Info("rating period transitioned",
		zap.String("period_id", id.String()),
		zap.String("status", string(to)),
	)
	return s.reloadPeriod(ctx, id)
}

func (s *Service) checkPeriodAdmin(actor memberdomain.Actor, periodID string) (snowflake.ID, error) {
	if actor.Role != memberdomain.RoleAdmin {
		return 0, ratingdomain.ErrAdminOnly
	}
	return parseID(periodID)
}

// periodConflict distinguishes a missing period from one in the wrong
// state after a compare-and-set found no row to update.
func (s *Service) periodConflict(ctx context.Context, id snowflake.ID) error {
	period, err := s.loadPeriod(ctx, s.db, id)
	if err != nil {
		return err
	}
	if period == nil {
		return ratingdomain.ErrPeriodNotFound
	}
	return ratingdomain.ErrPeriodStateConflict
}

func (s *Service) reloadPeriod(ctx context.Context, id snowflake.ID) (ratingdomain.RatingPeriod, error) {
	period, err := s.loadPeriod(ctx, s.db, id)
	if err != nil {
		return ratingdomain.RatingPeriod{}, err
	}
	if period == nil {
		return ratingdomain.RatingPeriod{}, ratingdomain.ErrPeriodNotFound
	}
	return *period, nil
}
