package pricing

import (
	"testing"

	"levelup/config"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicyForTest() service.PricingPolicy {
	return NewPolicy(&config.Config{Loyalty: config.DefaultLoyalty()})
}

func TestPolicy_Quote_NormalMember(t *testing.T) {
	policy := newPolicyForTest()
	buyer := &entity.User{MemberType: entity.MemberTypeNormal, Points: 500}

	quote, err := policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(10000)},
	}, 0)
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(20000)))
	assert.True(t, quote.TierDiscount.IsZero())
	assert.True(t, quote.PointsDiscount.IsZero())
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, 200, quote.PointsEarned)
}

func TestPolicy_Quote_DuocMemberDiscount(t *testing.T) {
	policy := newPolicyForTest()
	buyer := &entity.User{MemberType: entity.MemberTypeDuoc}

	quote, err := policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
	}, 0)
	require.NoError(t, err)

	assert.True(t, quote.TierDiscount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(8000)))
	// Earning stays anchored to the subtotal, not the discounted total.
	assert.Equal(t, 100, quote.PointsEarned)
}

func TestPolicy_Quote_PointsDiscount(t *testing.T) {
	policy := newPolicyForTest()
	buyer := &entity.User{MemberType: entity.MemberTypeNormal, Points: 5000}

	quote, err := policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(10000)},
	}, 1500)
	require.NoError(t, err)

	assert.True(t, quote.PointsDiscount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(8500)))
	assert.Equal(t, 1500, quote.PointsSpent)
}

func TestPolicy_Quote_Rejections(t *testing.T) {
	policy := newPolicyForTest()
	buyer := &entity.User{MemberType: entity.MemberTypeNormal}

	// Points discount exceeding the payable amount.
	_, err := policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, 5000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	// Negative points.
	_, err = policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}, -1)
	require.Error(t, err)

	// Non-positive quantity.
	_, err = policy.Quote(buyer, []service.QuoteLine{
		{Quantity: 0, UnitPrice: decimal.NewFromInt(1000)},
	}, 0)
	require.Error(t, err)
}
