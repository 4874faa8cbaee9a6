package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/meritworks/meritboard/internal/clock"
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	memberrepository "github.com/meritworks/meritboard/internal/member/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (ledgerdomain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize writers: in-memory sqlite returns busy errors under
	// concurrent connections.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&memberdomain.Member{}, &ledgerdomain.PointTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		MemberRepo: memberrepository.Provide(),
	})
	return svc, db, node, clk
}

func seedMember(t *testing.T, db *gorm.DB, node *snowflake.Node) memberdomain.Member {
	t.Helper()

	member := memberdomain.Member{
		ID:          node.Generate(),
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Unit:        "platform",
		Role:        memberdomain.RoleMember,
		JoinedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&member).Error)
	return member
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)

	_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: "not-a-number", Delta: 5, Kind: ledgerdomain.KindEarn,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidMemberID)

	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: member.ID.String(), Delta: 0, Kind: ledgerdomain.KindEarn,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrZeroDelta)

	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: member.ID.String(), Delta: 5, Kind: "windfall",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidKind)

	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: node.Generate().String(), Delta: 5, Kind: ledgerdomain.KindEarn,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrUnknownMember)
}

func TestTotalMatchesSumOfDeltas(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)

	total, err := svc.TotalFor(context.Background(), member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	deltas := []int64{10, 5, -3, 20, -7}
	var want int64
	for _, delta := range deltas {
		kind := ledgerdomain.KindEarn
		if delta < 0 {
			kind = ledgerdomain.KindDeduct
		}
		_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
			MemberID: member.ID.String(),
			Delta:    delta,
			Kind:     kind,
			Reason:   "activity",
		})
		require.NoError(t, err)
		want += delta
	}

	total, err = svc.TotalFor(context.Background(), member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, want, total)
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
				MemberID: member.ID.String(),
				Delta:    1,
				Kind:     ledgerdomain.KindEarn,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total, err := svc.TotalFor(context.Background(), member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(writers), total)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)

	var ids []string
	for i := 0; i < 5; i++ {
		txn, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
			MemberID: member.ID.String(),
			Delta:    int64(i + 1),
			Kind:     ledgerdomain.KindEarn,
		})
		require.NoError(t, err)
		ids = append(ids, txn.ID.String())
	}

	resp, err := svc.HistoryFor(context.Background(), ledgerdomain.HistoryRequest{MemberID: member.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 5)
	for i, txn := range resp.Transactions {
		assert.Equal(t, ids[len(ids)-1-i], txn.ID.String())
	}
}

func TestHistoryPagesStableUnderAppends(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)

	for i := 0; i < 4; i++ {
		_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
			MemberID: member.ID.String(),
			Delta:    int64(i + 1),
			Kind:     ledgerdomain.KindEarn,
		})
		require.NoError(t, err)
	}

	first, err := svc.HistoryFor(context.Background(), ledgerdomain.HistoryRequest{
		MemberID: member.ID.String(),
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	require.NotEmpty(t, first.AsOfID)

	// A concurrent append between pages must not shift the walk.
	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: member.ID.String(),
		Delta:    100,
		Kind:     ledgerdomain.KindBonus,
	})
	require.NoError(t, err)

	second, err := svc.HistoryFor(context.Background(), ledgerdomain.HistoryRequest{
		MemberID: member.ID.String(),
		Limit:    2,
		Offset:   2,
		AsOfID:   first.AsOfID,
	})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 2)

	seen := make(map[string]bool)
	for _, txn := range append(first.Transactions, second.Transactions...) {
		assert.False(t, seen[txn.ID.String()], "transaction repeated across pages")
		seen[txn.ID.String()] = true
		assert.NotEqual(t, int64(100), txn.Delta, "append after the head pin leaked into the walk")
	}
}

func TestDuplicateSourceRejected(t *testing.T) {
	svc, db, node, _ := newTestService(t)
	member := seedMember(t, db, node)
	source := node.Generate().String()

	_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID:         member.ID.String(),
		Delta:            5,
		Kind:             ledgerdomain.KindEarn,
		SourceActivityID: source,
	})
	require.NoError(t, err)

	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID:         member.ID.String(),
		Delta:            5,
		Kind:             ledgerdomain.KindEarn,
		SourceActivityID: source,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrDuplicateSource)

	// Same source under a different kind is a distinct event.
	_, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID:         member.ID.String(),
		Delta:            2,
		Kind:             ledgerdomain.KindBonus,
		SourceActivityID: source,
	})
	assert.NoError(t, err)
}

func TestAppendUsesClockWhenOccurredAtMissing(t *testing.T) {
	svc, db, node, clk := newTestService(t)
	member := seedMember(t, db, node)

	txn, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID: member.ID.String(),
		Delta:    1,
		Kind:     ledgerdomain.KindEarn,
	})
	require.NoError(t, err)
	assert.True(t, txn.OccurredAt.Equal(clk.Now()))

	occurred := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	txn, err = svc.Append(context.Background(), ledgerdomain.AppendRequest{
		MemberID:   member.ID.String(),
		Delta:      1,
		Kind:       ledgerdomain.KindEarn,
		OccurredAt: &occurred,
	})
	require.NoError(t, err)
	assert.True(t, txn.OccurredAt.Equal(occurred))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, isDuplicateKey(nil))
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: point_transactions.member_id")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
