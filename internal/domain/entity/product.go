package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Prices are fixed-point decimals (CLP); binary
// floats are never used for money anywhere in the core.
type Product struct {
	ID          uuid.UUID       // The Global Unique Identifier for the product.
	Code        string          // Unique human-readable product code.
	Name        string          // Display name.
	Description string          // Long-form description.
	Price       decimal.Decimal // Unit price. Non-negative.
	Stock       int             // Units on hand. Invariant: never negative.
	Category    string
	Brand       string
	PointsCost  int  // Points required to redeem this product. Zero when not redeemable.
	Redeemable  bool // Whether the product can be obtained through the points economy.
	Active      bool // Whether the product is offered for sale.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock reports whether the requested quantity can be fulfilled.
func (p *Product) HasStock(quantity int) bool {
	return quantity <= p.Stock
}
