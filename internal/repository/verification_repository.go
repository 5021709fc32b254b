package repository

import (
	"context"

	"maltiti/internal/domain/model"
)

type VerificationRepository interface {
	Create(ctx context.Context, v *model.Verification) error
	FindByToken(ctx context.Context, t model.VerificationType, token string) (model.Verification, error)
	DeleteByUser(ctx context.Context, userID string, t model.VerificationType) error
}
