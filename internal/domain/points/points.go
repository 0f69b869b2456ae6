// Package points holds the pure arithmetic of the loyalty points economy.
// Functions here depend only on their numeric inputs; persistence and
// orchestration live in the use case layer.
package points

import (
	"github.com/shopspring/decimal"

	"levelup/internal/errors"
)

// ErrNegativeBalance is returned when an adjustment would drive a balance
// below zero.
var ErrNegativeBalance = errors.New("points adjustment would produce a negative balance")

// Earned computes the points earned for a monetary amount at the given rate:
// one point per earnUnit of currency, rounded down. A non-positive earnUnit
// earns nothing.
func Earned(amount decimal.Decimal, earnUnit decimal.Decimal) int {
	if earnUnit.Sign() <= 0 || amount.Sign() <= 0 {
		return 0
	}

	return int(amount.Div(earnUnit).IntPart())
}

// DiscountValue converts a points debit into its currency value at the given
// conversion rate (currency units per point).
func DiscountValue(pts int, unitValue decimal.Decimal) decimal.Decimal {
	if pts <= 0 {
		return decimal.Zero
	}

	return unitValue.Mul(decimal.NewFromInt(int64(pts)))
}

// Adjust applies a net points movement (debit spent, credit earned) to a
// balance. The debit is validated against the starting balance, not the
// post-credit balance: points being earned by an operation cannot fund the
// points being spent in that same operation.
func Adjust(balance, spent, earned int) (int, error) {
	if spent < 0 || earned < 0 {
		return balance, errors.New("points deltas must be non-negative")
	}
	if spent > balance {
		return balance, ErrNegativeBalance
	}

	return balance - spent + earned, nil
}
