package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/clock"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	obsmetrics "github.com/meritworks/meritboard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	MemberRepo memberdomain.Repository
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	memberRepo memberdomain.Repository
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		memberRepo: p.MemberRepo,
		metrics:    p.Metrics,
	}
}

func (s *Service) Append(ctx context.Context, req ledgerdomain.AppendRequest) (ledgerdomain.PointTransaction, error) {
	return s.appendWith(ctx, s.db, req)
}

func (s *Service) AppendTx(ctx context.Context, tx *gorm.DB, req ledgerdomain.AppendRequest) (ledgerdomain.PointTransaction, error) {
	return s.appendWith(ctx, tx, req)
}

func (s *Service) appendWith(ctx context.Context, db *gorm.DB, req ledgerdomain.AppendRequest) (ledgerdomain.PointTransaction, error) {
	memberID, err := parseID(req.MemberID)
	if err != nil {
		return ledgerdomain.PointTransaction{}, ledgerdomain.ErrInvalidMemberID
	}

	if req.Delta == 0 {
		return ledgerdomain.PointTransaction{}, ledgerdomain.ErrZeroDelta
	}
	if !ledgerdomain.ValidKind(req.Kind) {
		return ledgerdomain.PointTransaction{}, ledgerdomain.ErrInvalidKind
	}

	var sourceID *snowflake.ID
	if strings.TrimSpace(req.SourceActivityID) != "" {
		parsed, err := parseID(req.SourceActivityID)
		if err != nil {
			return ledgerdomain.PointTransaction{}, ledgerdomain.ErrInvalidSource
		}
		sourceID = &parsed
	}

	known, err := s.memberRepo.Exists(ctx, db, memberID)
	if err != nil {
		return ledgerdomain.PointTransaction{}, err
	}
	if !known {
		return ledgerdomain.PointTransaction{}, ledgerdomain.ErrUnknownMember
	}

	now := s.clock.Now()
	occurredAt := now
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = req.OccurredAt.UTC()
	}

	transaction := ledgerdomain.PointTransaction{
		ID:               s.genID.Generate(),
		MemberID:         memberID,
		Delta:            req.Delta,
		Kind:             req.Kind,
		Reason:           strings.TrimSpace(req.Reason),
		SourceActivityID: sourceID,
		OccurredAt:       occurredAt,
		CreatedAt:        now,
	}

	if err := db.WithContext(ctx).Create(&transaction).Error; err != nil {
		if isDuplicateKey(err) {
			return ledgerdomain.PointTransaction{}, ledgerdomain.ErrDuplicateSource
		}
		return ledgerdomain.PointTransaction{}, err
	}

	s.metrics.RecordLedgerAppend(string(req.Kind))
	s.log.Debug("ledger append",
		zap.String("member_id", memberID.String()),
		zap.String("kind", string(req.Kind)),
		zap.Int64("delta", req.Delta),
	)

	return transaction, nil
}

func (s *Service) TotalFor(ctx context.Context, memberIDRaw string) (int64, error) {
	memberID, err := parseID(memberIDRaw)
	if err != nil {
		return 0, ledgerdomain.ErrInvalidMemberID
	}

	var total int64
	err = s.db.WithContext(ctx).
		Model(&ledgerdomain.PointTransaction{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) HistoryFor(ctx context.Context, req ledgerdomain.HistoryRequest) (ledgerdomain.HistoryResponse, error) {
	memberID, err := parseID(req.MemberID)
	if err != nil {
		return ledgerdomain.HistoryResponse{}, ledgerdomain.ErrInvalidMemberID
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var asOf snowflake.ID
	if strings.TrimSpace(req.AsOfID) != "" {
		asOf, err = parseID(req.AsOfID)
		if err != nil {
			return ledgerdomain.HistoryResponse{}, ledgerdomain.ErrInvalidAsOf
		}
	} else {
		// Pin the walk to the head observed now so later pages are not
		// shifted by concurrent appends.
		err = s.db.WithContext(ctx).
			Model(&ledgerdomain.PointTransaction{}).
			Where("member_id = ?", memberID).
			Select("COALESCE(MAX(id), 0)").
			Scan(&asOf).Error
		if err != nil {
			return ledgerdomain.HistoryResponse{}, err
		}
	}

	var transactions []ledgerdomain.PointTransaction
	if asOf != 0 {
		err = s.db.WithContext(ctx).
			Where("member_id = ? AND id <= ?", memberID, asOf).
			Order("id desc").
			Limit(limit).
			Offset(offset).
			Find(&transactions).Error
		if err != nil {
			return ledgerdomain.HistoryResponse{}, err
		}
	}

	resp := ledgerdomain.HistoryResponse{Transactions: transactions}
	if asOf != 0 {
		resp.AsOfID = asOf.String()
	}
	return resp, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, ledgerdomain.ErrInvalidMemberID
	}
	return id, nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
