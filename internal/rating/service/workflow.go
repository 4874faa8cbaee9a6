package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"github.com/meritworks/meritboard/internal/tier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var editableStatuses = []ratingdomain.RatingStatus{
	ratingdomain.RatingStatusDraft,
	ratingdomain.RatingStatusNeedsRevision,
}

func (s *Service) SaveDraft(ctx context.Context, actor memberdomain.Actor, req ratingdomain.SaveDraftRequest) (ratingdomain.SelfRating, error) {
	if actor.Role != memberdomain.RoleMember {
		return ratingdomain.SelfRating{}, ratingdomain.ErrMemberOnly
	}
	memberID, err := parseID(actor.MemberID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	periodID, err := parseID(req.PeriodID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	period, err := s.loadPeriod(ctx, s.db, periodID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if period == nil {
		return ratingdomain.SelfRating{}, ratingdomain.ErrPeriodNotFound
	}
	if period.Status != ratingdomain.PeriodStatusActive {
		return ratingdomain.SelfRating{}, ratingdomain.ErrPeriodNotActive
	}

	criteria, err := s.loadCriteria(ctx, s.db, periodID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	known := make(map[string]struct{}, len(criteria))
	for _, criterion := range criteria {
		known[criterion.ID.String()] = struct{}{}
	}

	metCount := 0
	for id, response := range req.Responses {
		if _, ok := known[id]; !ok {
			return ratingdomain.SelfRating{}, ratingdomain.ErrUnknownCriterion
		}
		if response.Met {
			metCount++
		}
	}

	// The suggestion tracks the responses: every edit recomputes it.
	suggested := ratingdomain.SuggestTier(metCount, len(criteria))

	encoded, err := ratingdomain.EncodeResponses(req.Responses)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	now := s.clock.Now()
	existing, err := s.findRatingForMember(ctx, s.db, periodID, memberID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	if existing == nil {
		rating := ratingdomain.SelfRating{
			ID:             s.genID.Generate(),
			PeriodID:       periodID,
			MemberID:       memberID,
			Responses:      encoded,
			SelfAssessment: req.SelfAssessment,
			SuggestedTier:  suggested,
			Status:         ratingdomain.RatingStatusDraft,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.db.WithContext(ctx).Create(&rating).Error; err != nil {
			return ratingdomain.SelfRating{}, err
		}
		return rating, nil
	}

	// A submitted or decided record is never silently overwritten. The
	// status guard repeats in the UPDATE so a concurrent submit cannot
	// slip between the read and the write.
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.SelfRating{}).
		Where("id = ? AND status IN ?", existing.ID, editableStatuses).
		Updates(map[string]any{
			"responses":       encoded,
			"self_assessment": req.SelfAssessment,
			"suggested_tier":  suggested,
			"updated_at":      now,
		})
	if result.Error != nil {
		return ratingdomain.SelfRating{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.SelfRating{}, ratingdomain.ErrRatingLocked
	}

	return s.reloadRating(ctx, existing.ID)
}

func (s *Service) Submit(ctx context.Context, actor memberdomain.Actor, ratingID string) (ratingdomain.SelfRating, error) {
	if actor.Role != memberdomain.RoleMember {
		return ratingdomain.SelfRating{}, ratingdomain.ErrMemberOnly
	}
	actorID, err := parseID(actor.MemberID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	id, err := parseID(ratingID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	rating, err := s.loadRating(ctx, s.db, id)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if rating == nil {
		return ratingdomain.SelfRating{}, ratingdomain.ErrRatingNotFound
	}
	if rating.MemberID != actorID {
		return ratingdomain.SelfRating{}, ratingdomain.ErrNotOwner
	}
	if !isEditable(rating.Status) {
		return ratingdomain.SelfRating{}, &ratingdomain.InvalidStateTransitionError{
			Current:   rating.Status,
			Attempted: ratingdomain.RatingStatusSubmitted,
		}
	}

	missing, err := s.missingRequired(ctx, rating)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if len(missing) > 0 {
		return ratingdomain.SelfRating{}, &ratingdomain.IncompleteSubmissionError{Missing: missing}
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.SelfRating{}).
		Where("id = ? AND status IN ?", id, editableStatuses).
		Updates(map[string]any{
			"status":       ratingdomain.RatingStatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return ratingdomain.SelfRating{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.SelfRating{}, s.transitionConflict(ctx, s.db, id, ratingdomain.RatingStatusSubmitted)
	}

	s.metrics.RecordRatingTransition(string(ratingdomain.RatingStatusSubmitted))
	return s.reloadRating(ctx, id)
}

func (s *Service) Approve(ctx context.Context, actor memberdomain.Actor, req ratingdomain.ApproveRequest) (ratingdomain.SelfRating, error) {
	if actor.Role != memberdomain.RoleReviewer {
		return ratingdomain.SelfRating{}, ratingdomain.ErrReviewerOnly
	}
	id, err := parseID(req.RatingID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if !tier.Valid(req.FinalTier) {
		return ratingdomain.SelfRating{}, ratingdomain.ErrInvalidTier
	}

	points := ratingdomain.RewardPoints[req.FinalTier]
	if req.PointsOverride != nil {
		if *req.PointsOverride == 0 {
			return ratingdomain.SelfRating{}, ratingdomain.ErrInvalidOverride
		}
		points = *req.PointsOverride
	}

	rating, err := s.loadRating(ctx, s.db, id)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if rating == nil {
		return ratingdomain.SelfRating{}, ratingdomain.ErrRatingNotFound
	}

	now := s.clock.Now()
	// The status flip and the ledger entry commit together or not at all:
	// there is never an approved record without its bonus transaction.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ratingdomain.SelfRating{}).
			Where("id = ? AND status = ?", id, ratingdomain.RatingStatusSubmitted).
			Updates(map[string]any{
				"status":         ratingdomain.RatingStatusApproved,
				"final_tier":     req.FinalTier,
				"reviewer_notes": req.ReviewerNotes,
				"points_awarded": points,
				"reviewed_at":    now,
				"updated_at":     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.transitionConflict(ctx, tx, id, ratingdomain.RatingStatusApproved)
		}

		_, err := s.ledgerSvc.AppendTx(ctx, tx, ledgerdomain.AppendRequest{
			MemberID:         rating.MemberID.String(),
			Delta:            points,
			Kind:             ledgerdomain.KindBonus,
			Reason:           "self-rating approved: " + string(req.FinalTier),
			SourceActivityID: id.String(),
		})
		return err
	})
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	s.metrics.RecordRatingTransition(string(ratingdomain.RatingStatusApproved))
	s.log.Info("self-rating approved",
		zap.String("rating_id", id.String()),
		zap.String("member_id", rating.MemberID.String()),
		zap.String("final_tier", string(req.FinalTier)),
		zap.Int64("points", points),
	)
	return s.reloadRating(ctx, id)
}

func (s *Service) Reject(ctx context.Context, actor memberdomain.Actor, req ratingdomain.ReviewRequest) (ratingdomain.SelfRating, error) {
	return s.review(ctx, actor, req, ratingdomain.RatingStatusRejected)
}

func (s *Service) RequestRevision(ctx context.Context, actor memberdomain.Actor, req ratingdomain.ReviewRequest) (ratingdomain.SelfRating, error) {
	return s.review(ctx, actor, req, ratingdomain.RatingStatusNeedsRevision)
}

// review covers the two submitted->X transitions with no ledger effect.
// Responses stay untouched so needs_revision records remain editable.
func (s *Service) review(ctx context.Context, actor memberdomain.Actor, req ratingdomain.ReviewRequest, target ratingdomain.RatingStatus) (ratingdomain.SelfRating, error) {
	if actor.Role != memberdomain.RoleReviewer {
		return ratingdomain.SelfRating{}, ratingdomain.ErrReviewerOnly
	}
	id, err := parseID(req.RatingID)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&ratingdomain.SelfRating{}).
		Where("id = ? AND status = ?", id, ratingdomain.RatingStatusSubmitted).
		Updates(map[string]any{
			"status":         target,
			"reviewer_notes": req.ReviewerNotes,
			"reviewed_at":    now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return ratingdomain.SelfRating{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ratingdomain.SelfRating{}, s.transitionConflict(ctx, s.db, id, target)
	}

	s.metrics.RecordRatingTransition(string(target))
	return s.reloadRating(ctx, id)
}

// missingRequired returns the names of required criteria not marked met,
// in criterion order.
func (s *Service) missingRequired(ctx context.Context, rating *ratingdomain.SelfRating) ([]string, error) {
	criteria, err := s.loadCriteria(ctx, s.db, rating.PeriodID)
	if err != nil {
		return nil, err
	}
	responses, err := rating.DecodeResponses()
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, criterion := range criteria {
		if !criterion.Required {
			continue
		}
		response, ok := responses[criterion.ID.String()]
		if !ok || !response.Met {
			missing = append(missing, criterion.Name)
		}
	}
	return missing, nil
}

// transitionConflict reports why a status compare-and-set matched no row.
// It reads through the handle that ran the update so a conflict inside a
// transaction sees that transaction's view.
func (s *Service) transitionConflict(ctx context.Context, db *gorm.DB, id snowflake.ID, attempted ratingdomain.RatingStatus) error {
	rating, err := s.loadRating(ctx, db, id)
	if err != nil {
		return err
	}
	if rating == nil {
		return ratingdomain.ErrRatingNotFound
	}
	return &ratingdomain.InvalidStateTransitionError{
		Current:   rating.Status,
		Attempted: attempted,
	}
}

func (s *Service) reloadRating(ctx context.Context, id snowflake.ID) (ratingdomain.SelfRating, error) {
	rating, err := s.loadRating(ctx, s.db, id)
	if err != nil {
		return ratingdomain.SelfRating{}, err
	}
	if rating == nil {
		return ratingdomain.SelfRating{}, ratingdomain.ErrRatingNotFound
	}
	return *rating, nil
}

func isEditable(status ratingdomain.RatingStatus) bool {
	return status == ratingdomain.RatingStatusDraft || status == ratingdomain.RatingStatusNeedsRevision
}
