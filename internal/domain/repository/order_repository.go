package repository

import (
	"context"

	"levelup/internal/domain/entity"
	"levelup/internal/errors"

	"github.com/google/uuid"
)

// ErrOrderNotFound is a domain-specific error returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicateOrderNumber is returned when an insert collides on the unique
// order number. The caller regenerates the number and retries, bounded.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// OrderRepository defines the standard operations for order persistence.
// An order and its lines are created together, atomically.
type OrderRepository interface {
	// Create persists a new order with all of its lines.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves a single order (with lines) by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindAllByUser retrieves all orders of an account, newest first.
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)

	// ExistsByNumber reports whether an order number is already taken.
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// Update persists mutations to an existing order (status, notes).
	Update(ctx context.Context, order *entity.Order) error
}
