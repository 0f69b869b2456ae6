package impl

import (
	"context"
	"testing"

	"levelup/config"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedemptionServiceForTest(store *fakeStore, consumeStock bool) usecase.RedemptionUsecase {
	loyalty := config.DefaultLoyalty()
	loyalty.RedemptionsConsumeStock = consumeStock

	return NewRedemptionService(RedemptionServiceParams{
		TxManager:      newFakeTxManager(store),
		RedemptionRepo: &fakeRedemptionRepo{store: store},
		Config:         &config.Config{Loyalty: loyalty},
		Logger:         discardLogger(),
	})
}

func newRewardProduct(store *fakeStore, pointsCost, stock int) *entity.Product {
	return store.addProduct(&entity.Product{
		ID:         uuid.New(),
		Code:       "PR001",
		Name:       "Polera LevelUp",
		Price:      decimal.NewFromInt(8000),
		Stock:      stock,
		PointsCost: pointsCost,
		Redeemable: true,
		Active:     true,
	})
}

func TestRedemptionService_Create_ExactBalance(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 500)
	product := newRewardProduct(store, 500, 3)
	srv := newRedemptionServiceForTest(store, false)

	redemption, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RedemptionStatusPending, redemption.Status)
	assert.Equal(t, 500, redemption.PointsSpent)
	assert.Equal(t, 1, redemption.Quantity)
	assert.Equal(t, 0, store.userByID(account.ID).Points)
	// Stock untouched under the default policy.
	assert.Equal(t, 3, store.productByID(product.ID).Stock)
}

func TestRedemptionService_Create_InsufficientPoints(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 499)
	product := newRewardProduct(store, 500, 3)
	srv := newRedemptionServiceForTest(store, false)

	_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientPoints))
	assert.Equal(t, 499, store.userByID(account.ID).Points)
}

func TestRedemptionService_Create_NotRedeemable(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 1000)
	product := store.addProduct(&entity.Product{
		ID:     uuid.New(),
		Code:   "JM001",
		Name:   "Catan",
		Price:  decimal.NewFromInt(10000),
		Stock:  5,
		Active: true,
	})
	srv := newRedemptionServiceForTest(store, false)

	_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotRedeemable))
}

func TestRedemptionService_Create_NotFoundErrors(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 1000)
	product := newRewardProduct(store, 500, 3)
	srv := newRedemptionServiceForTest(store, false)

	_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      uuid.New(),
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

	_, err = srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   uuid.New(),
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestRedemptionService_Create_FulfillmentValidation(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 1000)
	product := newRewardProduct(store, 500, 3)
	srv := newRedemptionServiceForTest(store, false)

	_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: "paloma mensajera",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	// Shipping requires an address.
	_, err = srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentShipping),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	redemption, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentShipping),
		ShippingAddr: entity.Address{
			Street:  "Av. Providencia",
			Number:  "1234",
			City:    "Santiago",
			Commune: "Providencia",
			Region:  "Metropolitana",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FulfillmentShipping, redemption.Fulfillment)
}

func TestRedemptionService_Create_StockPolicyEnabled(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 1000)
	product := newRewardProduct(store, 500, 1)
	srv := newRedemptionServiceForTest(store, true)

	_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.productByID(product.ID).Stock)
	assert.Equal(t, 500, store.userByID(account.ID).Points)

	// Second redemption hits empty stock; the points debit rolls back with it.
	_, err = srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientStock))
	assert.Equal(t, 500, store.userByID(account.ID).Points)
	assert.Equal(t, 0, store.productByID(product.ID).Stock)
}

func TestRedemptionService_Update_StatusTransitions(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 500)
	product := newRewardProduct(store, 500, 3)
	srv := newRedemptionServiceForTest(store, false)

	redemption, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
		UserID:      account.ID,
		ProductID:   product.ID,
		Fulfillment: string(entity.FulfillmentPickup),
	})
	require.NoError(t, err)

	// pendiente -> entregado skips states and must be rejected.
	delivered := entity.RedemptionStatusDelivered.String()
	_, err = srv.UpdateRedemption(context.Background(), redemption.ID, &usecase.UpdateRedemptionInput{Status: &delivered})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusTransition))

	confirmed := entity.RedemptionStatusConfirmed.String()
	updated, err := srv.UpdateRedemption(context.Background(), redemption.ID, &usecase.UpdateRedemptionInput{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.RedemptionStatusConfirmed, updated.Status)

	shipped := entity.RedemptionStatusShipped.String()
	_, err = srv.UpdateRedemption(context.Background(), redemption.ID, &usecase.UpdateRedemptionInput{Status: &shipped})
	require.NoError(t, err)

	// Unlike orders, a shipped redemption can still be cancelled.
	cancelled := entity.RedemptionStatusCancelled.String()
	updated, err = srv.UpdateRedemption(context.Background(), redemption.ID, &usecase.UpdateRedemptionInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, entity.RedemptionStatusCancelled, updated.Status)
}

func TestRedemptionService_GetUserRedemptions(t *testing.T) {
	store := newFakeStore()
	account := newTestBuyer(store, 1500)
	product := newRewardProduct(store, 500, 5)
	srv := newRedemptionServiceForTest(store, false)

	for range 3 {
		_, err := srv.CreateRedemption(context.Background(), &usecase.CreateRedemptionInput{
			UserID:      account.ID,
			ProductID:   product.ID,
			Fulfillment: string(entity.FulfillmentPickup),
		})
		require.NoError(t, err)
	}

	redemptions, err := srv.GetUserRedemptions(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Len(t, redemptions, 3)
	assert.Equal(t, 0, store.userByID(account.ID).Points)
}
