package usecase

import (
	"context"

	"levelup/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// OrderItemInput is one cart entry: a product and the quantity to purchase.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderAmountsInput carries the precomputed monetary and points figures for the
// cart. Discount and total figures come from the pricing policy and are
// consumed as-is; the subtotal is revalidated against price snapshots inside
// the transaction.
type OrderAmountsInput struct {
	Subtotal       decimal.Decimal
	TierDiscount   decimal.Decimal
	PointsDiscount decimal.Decimal
	Total          decimal.Decimal
	PointsSpent    int
	PointsEarned   int
}

// AdminContext identifies the administrator placing an order on behalf of a
// customer at the point of sale.
type AdminContext struct {
	ID   uuid.UUID
	Name string
}

// CreateOrderInput defines the data required to place an order. The buyer is
// resolved by UserID when set, otherwise by Email; in the point-of-sale flow an
// unknown email with an admin context synthesizes a minimal zero-balance
// account.
type CreateOrderInput struct {
	UserID        *uuid.UUID
	Email         string
	ClientName    string // Display name for a synthesized point-of-sale account.
	Items         []OrderItemInput
	Amounts       OrderAmountsInput
	ShippingAddr  entity.Address
	PaymentMethod string
	Notes         string
	Admin         *AdminContext
}

// UpdateOrderInput is a patch: nil fields are left untouched.
type UpdateOrderInput struct {
	Status *string
	Notes  *string
}

// OrderUsecase defines the interface for order fulfillment operations.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, patch *UpdateOrderInput) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
}
