package domain

import (
	"context"
	"errors"
	"time"
)

type CreateMemberRequest struct {
	DisplayName string
	Email       string
	Unit        string
	Role        Role
	JoinedAt    *time.Time
}

type ListMemberRequest struct {
	Unit string
	Role Role
}

type GetMemberRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateMemberRequest) (Member, error)
	GetByID(context.Context, GetMemberRequest) (Member, error)
	List(context.Context, ListMemberRequest) ([]Member, error)
}

var (
	ErrInvalidDisplayName = errors.New("invalid_display_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("member_not_found")
)
