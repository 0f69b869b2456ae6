package repository

import (
	"context"

	"levelup/internal/domain/entity"
	"levelup/internal/errors"

	"github.com/google/uuid"
)

// ErrProductNotFound is a domain-specific error returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the standard operations for catalog persistence.
// Catalog administration (create/delete) lives outside this core; the engines
// only read products and mutate stock.
type ProductRepository interface {
	// FindByID retrieves a single product by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDForUpdate retrieves a product and locks its row for the
	// duration of the surrounding transaction. Concurrent stock checks on the
	// same product serialize through this lock, so stock can never
	// transiently go negative.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByCode retrieves a single product by its unique human-readable code.
	FindByCode(ctx context.Context, code string) (*entity.Product, error)

	// Update persists mutations (stock decrements) to an existing product.
	Update(ctx context.Context, product *entity.Product) error
}
