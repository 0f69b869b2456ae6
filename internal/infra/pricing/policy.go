// Package pricing implements the store's discount and points-conversion rules.
package pricing

import (
	"github.com/shopspring/decimal"

	"levelup/config"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/points"
	"levelup/internal/domain/service"
)

type policy struct {
	earnUnit            decimal.Decimal
	pointValue          decimal.Decimal
	tierDiscountPercent decimal.Decimal
}

// NewPolicy builds the pricing policy from the configured loyalty parameters.
func NewPolicy(cfg *config.Config) service.PricingPolicy {
	loyalty := cfg.Loyalty
	if loyalty == nil {
		loyalty = config.DefaultLoyalty()
	}

	return &policy{
		earnUnit:            decimal.NewFromInt(loyalty.EarnUnit),
		pointValue:          decimal.NewFromInt(loyalty.PointValue),
		tierDiscountPercent: decimal.NewFromInt(loyalty.TierDiscountPercent),
	}
}

// Quote computes subtotal, discounts, total and points movement for a cart.
// The tier discount applies only to institutional members; the points discount
// converts each spent point at the configured value and may not drive the
// total below zero.
func (p *policy) Quote(buyer *entity.User, lines []service.QuoteLine, pointsToSpend int) (*service.PricingQuote, error) {
	if pointsToSpend < 0 {
		return nil, domainerrors.ErrInvalidInput
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 || line.UnitPrice.IsNegative() {
			return nil, domainerrors.ErrInvalidInput
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tierDiscount := decimal.Zero
	if buyer != nil && buyer.MemberType == entity.MemberTypeDuoc {
		tierDiscount = subtotal.Mul(p.tierDiscountPercent).Div(decimal.NewFromInt(100)).Round(0)
	}

	pointsDiscount := points.DiscountValue(pointsToSpend, p.pointValue)
	if pointsDiscount.GreaterThan(subtotal.Sub(tierDiscount)) {
		return nil, domainerrors.ErrInvalidInput
	}

	total := subtotal.Sub(tierDiscount).Sub(pointsDiscount)

	return &service.PricingQuote{
		Subtotal:       subtotal,
		TierDiscount:   tierDiscount,
		PointsDiscount: pointsDiscount,
		Total:          total,
		PointsSpent:    pointsToSpend,
		PointsEarned:   points.Earned(subtotal, p.earnUnit),
	}, nil
}
