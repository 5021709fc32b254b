package repository

import (
	"context"

	"maltiti/internal/domain/model"
)

type CooperativeRepository interface {
	Create(ctx context.Context, c *model.Cooperative) error
	FindByID(ctx context.Context, id string) (model.Cooperative, error)
	FindByName(ctx context.Context, name string) (model.Cooperative, error)
	Update(ctx context.Context, c model.Cooperative) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q string, page int, limit int) ([]model.Cooperative, int64, error)
}

type CooperativeMemberRepository interface {
	Create(ctx context.Context, m *model.CooperativeMember) error
	FindByID(ctx context.Context, id string) (model.CooperativeMember, error)
	FindByPhoneNumber(ctx context.Context, phone string) (model.CooperativeMember, error)
	Update(ctx context.Context, m model.CooperativeMember) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q string, page int, limit int) ([]model.CooperativeMember, int64, error)
	ListByCooperativeID(ctx context.Context, cooperativeID string) ([]model.CooperativeMember, error)
}
