package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListMemberFilter struct {
	Unit string
	Role Role
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	List(ctx context.Context, db *gorm.DB, filter ListMemberFilter) ([]*Member, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
