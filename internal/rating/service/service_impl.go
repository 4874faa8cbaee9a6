package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/clock"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	obsmetrics "github.com/meritworks/meritboard/internal/observability/metrics"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	LedgerSvc ledgerdomain.Service
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
	metrics   *obsmetrics.Metrics
}

func NewService(p Params) ratingdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("rating.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
		metrics:   p.Metrics,
	}
}

func (s *Service) GetPeriod(ctx context.Context, periodID string) (ratingdomain.PeriodDetail, error) {
	id, err := parseID(periodID)
	if err != nil {
		return ratingdomain.PeriodDetail{}, err
	}

	period, err := s.loadPeriod(ctx, s.db, id)
	if err != nil {
		return ratingdomain.PeriodDetail{}, err
	}
	if period == nil {
		return ratingdomain.PeriodDetail{}, ratingdomain.ErrPeriodNotFound
	}

	criteria, err := s.loadCriteria(ctx, s.db, id)
	if err != nil {
		return ratingdomain.PeriodDetail{}, err
	}

	return ratingdomain.PeriodDetail{RatingPeriod: *period, Criteria: criteria}, nil
}

func (s *Service) ListPeriods(ctx context.Context) ([]ratingdomain.RatingPeriod, error) {
	var periods []ratingdomain.RatingPeriod
	err := s.db.WithContext(ctx).
		Order("start_date desc, id desc").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Service) GetRating(ctx context.Context, ratingID string) (ratingdomain.SelfRating, error) {
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
	return *rating, nil
}

func (s *Service) ListRatings(ctx context.Context, periodID string) ([]ratingdomain.SelfRating, error) {
	id, err := parseID(periodID)
	if err != nil {
		return nil, err
	}

	var ratings []ratingdomain.SelfRating
	err = s.db.WithContext(ctx).
		Where("period_id = ?", id).
		Order("id asc").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *Service) loadPeriod(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ratingdomain.RatingPeriod, error) {
	var period ratingdomain.RatingPeriod
	err := db.WithContext(ctx).First(&period, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (s *Service) loadCriteria(ctx context.Context, db *gorm.DB, periodID snowflake.ID) ([]ratingdomain.Criterion, error) {
	var criteria []ratingdomain.Criterion
	err := db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("position asc, id asc").
		Find(&criteria).Error
	if err != nil {
		return nil, err
	}
	return criteria, nil
}

func (s *Service) loadRating(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ratingdomain.SelfRating, error) {
	var rating ratingdomain.SelfRating
	err := db.WithContext(ctx).First(&rating, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (s *Service) findRatingForMember(ctx context.Context, db *gorm.DB, periodID, memberID snowflake.ID) (*ratingdomain.SelfRating, error) {
	var rating ratingdomain.SelfRating
	err := db.WithContext(ctx).
		First(&rating, "period_id = ? AND member_id = ?", periodID, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, ratingdomain.ErrInvalidID
	}
	return id, nil
}
