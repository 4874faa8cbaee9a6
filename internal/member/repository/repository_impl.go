package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).First(&member, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListMemberFilter) ([]*domain.Member, error) {
	var members []*domain.Member
	stmt := db.WithContext(ctx).Model(&domain.Member{})
	if filter.Unit != "" {
		stmt = stmt.Where("unit = ?", filter.Unit)
	}
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	err := stmt.Order("joined_at asc, id asc").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Member{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
