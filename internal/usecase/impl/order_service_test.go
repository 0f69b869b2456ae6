package impl

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync"
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

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{5}$`)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLoyaltyConfig() *config.Config {
	return &config.Config{Loyalty: config.DefaultLoyalty()}
}

func newOrderServiceForTest(store *fakeStore) usecase.OrderUsecase {
	return NewOrderService(OrderServiceParams{
		TxManager: newFakeTxManager(store),
		OrderRepo: &fakeOrderRepo{store: store},
		Config:    testLoyaltyConfig(),
		Logger:    discardLogger(),
	})
}

func newTestBuyer(store *fakeStore, points int) *entity.User {
	return store.addUser(&entity.User{
		ID:           uuid.New(),
		Name:         "Carla Soto",
		Email:        "carla@example.com",
		Role:         entity.RoleUser,
		MemberType:   entity.MemberTypeNormal,
		Level:        entity.DefaultLevel,
		Points:       points,
		ReferralCode: "CAR1234",
		Active:       true,
	})
}

func newTestProduct(store *fakeStore, price int64, stock int) *entity.Product {
	return store.addProduct(&entity.Product{
		ID:     uuid.New(),
		Code:   "JM001",
		Name:   "Catan",
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Active: true,
	})
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 0)
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	order, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		UserID: &buyer.ID,
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal:       decimal.NewFromInt(20000),
			TierDiscount:   decimal.Zero,
			PointsDiscount: decimal.Zero,
			Total:          decimal.NewFromInt(20000),
			PointsSpent:    0,
			PointsEarned:   200,
		},
		PaymentMethod: "webpay",
	})
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, order.Number)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, createdByUser, order.CreatedBy)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "Catan", order.Lines[0].ProductName)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.NewFromInt(10000)))
	assert.True(t, order.LinesSubtotal().Equal(order.Subtotal))

	// Stock decremented, points credited.
	assert.Equal(t, 3, store.productByID(product.ID).Stock)
	assert.Equal(t, 200, store.userByID(buyer.ID).Points)
}

func TestOrderService_CreateOrder_InsufficientStockRollsBack(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 500)
	inStock := newTestProduct(store, 10000, 5)
	scarce := store.addProduct(&entity.Product{
		ID:     uuid.New(),
		Code:   "JM002",
		Name:   "Carcassonne",
		Price:  decimal.NewFromInt(15000),
		Stock:  1,
		Active: true,
	})
	srv := newOrderServiceForTest(store)

	_, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		UserID: &buyer.ID,
		Items: []usecase.OrderItemInput{
			{ProductID: inStock.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
		Amounts: usecase.OrderAmountsInput{
			Subtotal: decimal.NewFromInt(65000),
			Total:    decimal.NewFromInt(65000),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientStock))

	// Nothing moved: not even the line that had stock.
	assert.Equal(t, 5, store.productByID(inStock.ID).Stock)
	assert.Equal(t, 1, store.productByID(scarce.ID).Stock)
	assert.Equal(t, 500, store.userByID(buyer.ID).Points)
}

func TestOrderService_CreateOrder_PointsPrecheckBeforeStock(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 50)
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	_, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		UserID: &buyer.ID,
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal:       decimal.NewFromInt(10000),
			PointsDiscount: decimal.NewFromInt(100),
			Total:          decimal.NewFromInt(9900),
			PointsSpent:    100,
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInsufficientPoints))

	assert.Equal(t, 5, store.productByID(product.ID).Stock)
	assert.Equal(t, 50, store.userByID(buyer.ID).Points)
}

func TestOrderService_CreateOrder_SubtotalMismatchRejected(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 0)
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	_, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		UserID: &buyer.ID,
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal: decimal.NewFromInt(19000),
			Total:    decimal.NewFromInt(19000),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	// Stock decrement rolled back with the failed transaction.
	assert.Equal(t, 5, store.productByID(product.ID).Stock)
}

func TestOrderService_CreateOrder_InputValidation(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 0)
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	tests := []struct {
		name  string
		input *usecase.CreateOrderInput
	}{
		{
			name:  "empty cart",
			input: &usecase.CreateOrderInput{UserID: &buyer.ID},
		},
		{
			name: "non-positive quantity",
			input: &usecase.CreateOrderInput{
				UserID: &buyer.ID,
				Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 0}},
			},
		},
		{
			name: "duplicate product",
			input: &usecase.CreateOrderInput{
				UserID: &buyer.ID,
				Items: []usecase.OrderItemInput{
					{ProductID: product.ID, Quantity: 1},
					{ProductID: product.ID, Quantity: 2},
				},
			},
		},
		{
			name: "no buyer reference",
			input: &usecase.CreateOrderInput{
				Items: []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.CreateOrder(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
		})
	}
}

func TestOrderService_CreateOrder_UnknownBuyer(t *testing.T) {
	store := newFakeStore()
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	_, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		Email: "nadie@example.com",
		Items: []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal: decimal.NewFromInt(10000),
			Total:    decimal.NewFromInt(10000),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestOrderService_CreateOrder_PointOfSaleSynthesizesBuyer(t *testing.T) {
	store := newFakeStore()
	admin := store.addUser(&entity.User{
		ID:           uuid.New(),
		Name:         "Admin",
		Email:        "admin@levelup.cl",
		Role:         entity.RoleAdmin,
		ReferralCode: "ADM9999",
		Active:       true,
	})
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	order, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		Email:      "cliente@duocuc.cl",
		ClientName: "Cliente Mostrador",
		Items:      []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal: decimal.NewFromInt(10000),
			Total:    decimal.NewFromInt(10000),
		},
		PaymentMethod: "efectivo",
		Admin:         &usecase.AdminContext{ID: admin.ID, Name: admin.Name},
	})
	require.NoError(t, err)

	assert.Equal(t, createdByAdmin, order.CreatedBy)
	require.NotNil(t, order.AdminID)
	assert.Equal(t, admin.ID, *order.AdminID)

	buyer := store.userByID(order.UserID)
	require.NotNil(t, buyer)
	assert.Equal(t, "Cliente Mostrador", buyer.Name)
	assert.Equal(t, entity.MemberTypeDuoc, buyer.MemberType)
	assert.Equal(t, 0, buyer.Points)
	assert.NotEmpty(t, buyer.ReferralCode)
}

func TestOrderService_CreateOrder_ConcurrentLastUnit(t *testing.T) {
	store := newFakeStore()
	first := newTestBuyer(store, 0)
	second := store.addUser(&entity.User{
		ID:           uuid.New(),
		Name:         "Diego Rojas",
		Email:        "diego@example.com",
		Role:         entity.RoleUser,
		Level:        entity.DefaultLevel,
		ReferralCode: "DIE5678",
		Active:       true,
	})
	product := newTestProduct(store, 10000, 1)
	srv := newOrderServiceForTest(store)

	input := func(userID uuid.UUID) *usecase.CreateOrderInput {
		return &usecase.CreateOrderInput{
			UserID: &userID,
			Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			Amounts: usecase.OrderAmountsInput{
				Subtotal: decimal.NewFromInt(10000),
				Total:    decimal.NewFromInt(10000),
			},
		}
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = srv.CreateOrder(context.Background(), input(userID))
		}()
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			failures++
			assert.True(t, errors.Is(err, domainerrors.ErrInsufficientStock))
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two concurrent orders must fail")
	assert.Equal(t, 0, store.productByID(product.ID).Stock)
}

func TestOrderService_UpdateOrder_StatusTransitions(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 0)
	product := newTestProduct(store, 10000, 5)
	srv := newOrderServiceForTest(store)

	order, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
		UserID: &buyer.ID,
		Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		Amounts: usecase.OrderAmountsInput{
			Subtotal: decimal.NewFromInt(10000),
			Total:    decimal.NewFromInt(10000),
		},
	})
	require.NoError(t, err)

	// pendiente -> entregado skips states and must be rejected.
	invalid := entity.OrderStatusDelivered.String()
	_, err = srv.UpdateOrder(context.Background(), order.ID, &usecase.UpdateOrderInput{Status: &invalid})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusTransition))

	// Unknown status string.
	junk := "perdido"
	_, err = srv.UpdateOrder(context.Background(), order.ID, &usecase.UpdateOrderInput{Status: &junk})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	// pendiente -> pagado is allowed; notes patch rides along.
	paid := entity.OrderStatusPaid.String()
	notes := "pagado en caja"
	updated, err := srv.UpdateOrder(context.Background(), order.ID, &usecase.UpdateOrderInput{Status: &paid, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, updated.Status)
	assert.Equal(t, notes, updated.Notes)

	// Notes-only patch leaves status untouched.
	moreNotes := "retira en tienda"
	updated, err = srv.UpdateOrder(context.Background(), order.ID, &usecase.UpdateOrderInput{Notes: &moreNotes})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, updated.Status)
	assert.Equal(t, moreNotes, updated.Notes)
}

func TestOrderService_UpdateOrder_Errors(t *testing.T) {
	store := newFakeStore()
	srv := newOrderServiceForTest(store)

	paid := entity.OrderStatusPaid.String()
	_, err := srv.UpdateOrder(context.Background(), uuid.New(), &usecase.UpdateOrderInput{Status: &paid})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))

	_, err = srv.UpdateOrder(context.Background(), uuid.New(), &usecase.UpdateOrderInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
}

func TestOrderService_GetUserOrders(t *testing.T) {
	store := newFakeStore()
	buyer := newTestBuyer(store, 0)
	product := newTestProduct(store, 10000, 10)
	srv := newOrderServiceForTest(store)

	for range 3 {
		_, err := srv.CreateOrder(context.Background(), &usecase.CreateOrderInput{
			UserID: &buyer.ID,
			Items:  []usecase.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			Amounts: usecase.OrderAmountsInput{
				Subtotal: decimal.NewFromInt(10000),
				Total:    decimal.NewFromInt(10000),
			},
		})
		require.NoError(t, err)
	}

	orders, err := srv.GetUserOrders(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	numbers := make(map[string]struct{}, len(orders))
	for _, order := range orders {
		numbers[order.Number] = struct{}{}
	}
	assert.Len(t, numbers, 3, "order numbers must be unique")
}
