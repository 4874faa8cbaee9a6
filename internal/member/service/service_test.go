package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/meritworks/meritboard/internal/clock"
	"github.com/meritworks/meritboard/internal/member/domain"
	"github.com/meritworks/meritboard/internal/member/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Member{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateMemberValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateMemberRequest{
		DisplayName: "  ",
		Email:       "alice@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDisplayName)

	_, err = svc.Create(context.Background(), domain.CreateMemberRequest{
		DisplayName: "Alice",
		Email:       "not-an-email",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(context.Background(), domain.CreateMemberRequest{
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Role:        "superuser",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateMemberDefaultsRole(t *testing.T) {
	svc := newTestService(t)

	member, err := svc.Create(context.Background(), domain.CreateMemberRequest{
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Unit:        " platform ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)
	assert.Equal(t, "platform", member.Unit)
	assert.NotZero(t, member.ID)

	got, err := svc.GetByID(context.Background(), domain.GetMemberRequest{ID: member.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)
}

func TestGetMemberNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), domain.GetMemberRequest{ID: "7205759403792793600"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), domain.GetMemberRequest{ID: "zero"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListMembersFilters(t *testing.T) {
	svc := newTestService(t)

	seed := []domain.CreateMemberRequest{
		{DisplayName: "Alice", Email: "alice@example.com", Unit: "platform", Role: domain.RoleMember},
		{DisplayName: "Bob", Email: "bob@example.com", Unit: "sales", Role: domain.RoleMember},
		{DisplayName: "Rae", Email: "rae@example.com", Unit: "platform", Role: domain.RoleReviewer},
	}
	for _, req := range seed {
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), domain.ListMemberRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	platform, err := svc.List(context.Background(), domain.ListMemberRequest{Unit: "platform"})
	require.NoError(t, err)
	assert.Len(t, platform, 2)

	reviewers, err := svc.List(context.Background(), domain.ListMemberRequest{Role: domain.RoleReviewer})
	require.NoError(t, err)
	require.Len(t, reviewers, 1)
	assert.Equal(t, "Rae", reviewers[0].DisplayName)

	_, err = svc.List(context.Background(), domain.ListMemberRequest{Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
