package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	leaderboarddomain "github.com/meritworks/meritboard/internal/leaderboard/domain"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	"github.com/meritworks/meritboard/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  leaderboarddomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&memberdomain.Member{}, &ledgerdomain.PointTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{DB: db, Log: zap.NewNop()})
	return &fixture{svc: svc, db: db, node: node}
}

func (f *fixture) addMember(t *testing.T, name, unit string) memberdomain.Member {
	t.Helper()
	member := memberdomain.Member{
		ID:          f.node.Generate(),
		DisplayName: name,
		Email:       name + "@example.com",
		Unit:        unit,
		Role:        memberdomain.RoleMember,
		JoinedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member
}

func (f *fixture) addPoints(t *testing.T, member memberdomain.Member, delta int64) {
	t.Helper()
	txn := ledgerdomain.PointTransaction{
		ID:         f.node.Generate(),
		MemberID:   member.ID,
		Delta:      delta,
		Kind:       ledgerdomain.KindEarn,
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Create(&txn).Error)
}

func TestRankOrdersByTotalDescending(t *testing.T) {
	f := newFixture(t)
	low := f.addMember(t, "low", "platform")
	high := f.addMember(t, "high", "platform")
	mid := f.addMember(t, "mid", "platform")
	f.addPoints(t, low, 100)
	f.addPoints(t, high, 900)
	f.addPoints(t, mid, 450)
	f.addPoints(t, mid, 50)

	resp, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 3)

	assert.Equal(t, high.ID.String(), resp.Rows[0].MemberID)
	assert.Equal(t, mid.ID.String(), resp.Rows[1].MemberID)
	assert.Equal(t, low.ID.String(), resp.Rows[2].MemberID)
	for i, row := range resp.Rows {
		assert.Equal(t, i+1, row.Position)
	}
	assert.Equal(t, tier.Excellent, resp.Rows[0].Tier)
	assert.Equal(t, tier.Average, resp.Rows[1].Tier)
	assert.Equal(t, tier.Poor, resp.Rows[2].Tier)
	assert.Equal(t, 1, resp.ExcellentCount)
	assert.InDelta(t, 500.0, resp.AveragePoints, 0.001)
}

func TestRankTiesBreakByMemberID(t *testing.T) {
	f := newFixture(t)
	first := f.addMember(t, "first", "platform")
	second := f.addMember(t, "second", "platform")
	f.addPoints(t, first, 500)
	f.addPoints(t, second, 500)

	resp, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, first.ID.String(), resp.Rows[0].MemberID)
	assert.Equal(t, second.ID.String(), resp.Rows[1].MemberID)
}

func TestRankIncludesMembersWithoutTransactions(t *testing.T) {
	f := newFixture(t)
	active := f.addMember(t, "active", "platform")
	idle := f.addMember(t, "idle", "platform")
	f.addPoints(t, active, 10)

	resp, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, idle.ID.String(), resp.Rows[1].MemberID)
	assert.Equal(t, int64(0), resp.Rows[1].TotalPoints)
	assert.Equal(t, tier.Poor, resp.Rows[1].Tier)
}

func TestRankFiltersByUnit(t *testing.T) {
	f := newFixture(t)
	platform := f.addMember(t, "p1", "platform")
	f.addMember(t, "s1", "sales")
	f.addPoints(t, platform, 10)

	resp, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{Unit: "platform"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, platform.ID.String(), resp.Rows[0].MemberID)

	all, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Rows, 2)
}

func TestRankIsRepeatable(t *testing.T) {
	f := newFixture(t)
	a := f.addMember(t, "a", "platform")
	b := f.addMember(t, "b", "platform")
	f.addPoints(t, a, 700)
	f.addPoints(t, b, 700)

	first, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	second, err := f.svc.Rank(context.Background(), leaderboarddomain.RankRequest{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
