package service

import (
	"levelup/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PricingQuote carries the monetary and points figures for a cart. The order
// fulfillment engine consumes these as-is; it never re-derives discount rates.
type PricingQuote struct {
	Subtotal       decimal.Decimal
	TierDiscount   decimal.Decimal
	PointsDiscount decimal.Decimal
	Total          decimal.Decimal
	PointsSpent    int
	PointsEarned   int
}

// QuoteLine is one already-priced cart entry: quantity at the snapshot unit price.
type QuoteLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// PricingPolicy owns the discount and points-conversion business rules. It is
// external to the fulfillment engine: callers invoke it before or alongside
// order creation and hand the resulting figures to the engine.
type PricingPolicy interface {
	// Quote computes the amounts for a cart given the buyer and the points
	// the buyer wants to spend as a discount.
	Quote(buyer *entity.User, lines []QuoteLine, pointsToSpend int) (*PricingQuote, error)
}
