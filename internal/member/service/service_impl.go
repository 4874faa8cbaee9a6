package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/clock"
	"github.com/meritworks/meritboard/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return domain.Member{}, domain.ErrInvalidDisplayName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Member{}, domain.ErrInvalidEmail
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return domain.Member{}, domain.ErrInvalidRole
	}

	now := s.clock.Now()
	joinedAt := now
	if req.JoinedAt != nil {
		joinedAt = req.JoinedAt.UTC()
	}

	member := domain.Member{
		ID:          s.genID.Generate(),
		DisplayName: name,
		Email:       email,
		Unit:        strings.TrimSpace(req.Unit),
		Role:        role,
		JoinedAt:    joinedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return domain.Member{}, err
	}

	return member, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetMemberRequest) (domain.Member, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Member{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Member{}, err
	}
	if item == nil {
		return domain.Member{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMemberRequest) ([]domain.Member, error) {
	if req.Role != "" && !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	items, err := s.repo.List(ctx, s.db, domain.ListMemberFilter{
		Unit: strings.TrimSpace(req.Unit),
		Role: req.Role,
	})
	if err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}
	return members, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
