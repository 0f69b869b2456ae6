package repository

import (
	"context"

	"levelup/internal/domain/entity"
	"levelup/internal/errors"

	"github.com/google/uuid"
)

// ErrRedemptionNotFound is a domain-specific error returned when a redemption is not found.
var ErrRedemptionNotFound = errors.New("redemption not found")

// RedemptionRepository defines the standard operations for redemption persistence.
type RedemptionRepository interface {
	// Create persists a new redemption record.
	Create(ctx context.Context, redemption *entity.Redemption) error

	// FindByID retrieves a single redemption by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Redemption, error)

	// FindAllByUser retrieves all redemptions of an account, newest first.
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Redemption, error)

	// Update persists mutations to an existing redemption (status, notes).
	Update(ctx context.Context, redemption *entity.Redemption) error
}
