package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	leaderboarddomain "github.com/meritworks/meritboard/internal/leaderboard/domain"
	obsmetrics "github.com/meritworks/meritboard/internal/observability/metrics"
	"github.com/meritworks/meritboard/internal/tier"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewService(p Params) leaderboarddomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("leaderboard.service"),
		metrics: p.Metrics,
	}
}

type memberTotal struct {
	MemberID    snowflake.ID
	DisplayName string
	Unit        string
	TotalPoints int64
}

func (s *Service) Rank(ctx context.Context, req leaderboarddomain.RankRequest) (leaderboarddomain.RankResponse, error) {
	unit := strings.TrimSpace(req.Unit)

	// LEFT JOIN so members without any transactions appear with 0 points
	// instead of dropping out of the projection.
	var totals []memberTotal
	err := s.db.WithContext(ctx).Raw(
		`SELECT m.id AS member_id,
		        m.display_name AS display_name,
		        m.unit AS unit,
		        COALESCE(SUM(t.delta), 0) AS total_points
		 FROM members m
		 LEFT JOIN point_transactions t ON t.member_id = m.id
		 WHERE (? = '' OR m.unit = ?)
		 GROUP BY m.id, m.display_name, m.unit
		 ORDER BY total_points DESC, m.id ASC`,
		unit,
		unit,
	).Scan(&totals).Error
	if err != nil {
		return leaderboarddomain.RankResponse{}, err
	}

	rows := make([]leaderboarddomain.Row, 0, len(totals))
	var sum int64
	excellent := 0
	for i, item := range totals {
		rowTier := tier.Classify(item.TotalPoints)
		if rowTier == tier.Excellent {
			excellent++
		}
		sum += item.TotalPoints
		rows = append(rows, leaderboarddomain.Row{
			Position:    i + 1,
			MemberID:    item.MemberID.String(),
			DisplayName: item.DisplayName,
			Unit:        item.Unit,
			TotalPoints: item.TotalPoints,
			Tier:        rowTier,
		})
	}

	resp := leaderboarddomain.RankResponse{
		Rows:           rows,
		ExcellentCount: excellent,
	}
	if len(rows) > 0 {
		resp.AveragePoints = float64(sum) / float64(len(rows))
	}

	s.metrics.RecordLeaderboardRead()
	return resp, nil
}
