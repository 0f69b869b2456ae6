package usecase

import (
	"context"

	"levelup/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateRedemptionInput defines the data required to redeem a product for points.
type CreateRedemptionInput struct {
	UserID       uuid.UUID
	ProductID    uuid.UUID
	Fulfillment  string
	ShippingAddr entity.Address
	Notes        string
}

// UpdateRedemptionInput is a patch: nil fields are left untouched.
type UpdateRedemptionInput struct {
	Status *string
	Notes  *string
}

// RedemptionUsecase defines the interface for points-redemption operations.
type RedemptionUsecase interface {
	CreateRedemption(ctx context.Context, input *CreateRedemptionInput) (*entity.Redemption, error)
	UpdateRedemption(ctx context.Context, redemptionID uuid.UUID, patch *UpdateRedemptionInput) (*entity.Redemption, error)
	GetRedemption(ctx context.Context, redemptionID uuid.UUID) (*entity.Redemption, error)
	GetUserRedemptions(ctx context.Context, userID uuid.UUID) ([]*entity.Redemption, error)
}
