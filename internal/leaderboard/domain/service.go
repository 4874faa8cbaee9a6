// Package domain describes the leaderboard projection. The leaderboard is
// never a store of truth: every call recomputes member totals from the
// point ledger.
package domain

import (
	"context"

	"github.com/meritworks/meritboard/internal/tier"
)

// Row is one ranked member. Position is the 1-based index after sorting
// by TotalPoints descending; ties break by ascending member id, which is
// a total order and keeps repeated reads identical.
type Row struct {
	Position    int       `json:"position"`
	MemberID    string    `json:"member_id"`
	DisplayName string    `json:"display_name"`
	Unit        string    `json:"unit"`
	TotalPoints int64     `json:"total_points"`
	Tier        tier.Tier `json:"tier"`
}

// RankRequest scopes the projection. An empty Unit ranks the whole
// organization.
type RankRequest struct {
	Unit string
}

type RankResponse struct {
	Rows           []Row   `json:"rows"`
	AveragePoints  float64 `json:"average_points"`
	ExcellentCount int     `json:"excellent_count"`
}

type Service interface {
	Rank(context.Context, RankRequest) (RankResponse, error)
}
