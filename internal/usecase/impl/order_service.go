package impl

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"levelup/config"
	deliverycontext "levelup/internal/delivery/context"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/points"
	"levelup/internal/domain/repository"
	"levelup/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// createdByUser and createdByAdmin record which flow placed an order.
const (
	createdByUser  = "usuario"
	createdByAdmin = "admin"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager  repository.TransactionManager
	orderRepo  repository.OrderRepository
	retryLimit int
	logger     *slog.Logger
}

// OrderServiceParams holds dependencies for orderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Config    *config.Config
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	retryLimit := config.DefaultLoyalty().CodeRetryLimit
	if params.Config != nil && params.Config.Loyalty != nil && params.Config.Loyalty.CodeRetryLimit > 0 {
		retryLimit = params.Config.Loyalty.CodeRetryLimit
	}

	return &orderService{
		txManager:  params.TxManager,
		orderRepo:  params.OrderRepo,
		retryLimit: retryLimit,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder places an order in a single transaction: it resolves the buyer,
// pre-checks points before touching stock, locks and decrements stock per
// line, validates the subtotal against price snapshots, applies the net points
// movement and persists the order with a unique number.
func (srv *orderService) CreateOrder(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	if err := validateCreateOrderInput(input); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Creating order",
		slog.String("email", input.Email),
		slog.Int("items", len(input.Items)),
		slog.Int("pointsSpent", input.Amounts.PointsSpent),
	)

	var createdOrder *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		buyer, err := srv.resolveBuyer(ctx, repoFactory, input)
		if err != nil {
			return err
		}

		// Points sufficiency is checked against the locked balance before any
		// stock mutation, so a points failure never leaves stock decremented.
		if !buyer.CanSpendPoints(input.Amounts.PointsSpent) {
			return errors.Wrap(domainerrors.ErrInsufficientPoints, "points balance does not cover requested discount")
		}

		lines, err := srv.consumeStock(ctx, repoFactory.ProductRepo(), input.Items)
		if err != nil {
			return err
		}

		order := &entity.Order{
			UserID:         buyer.ID,
			Lines:          lines,
			Subtotal:       input.Amounts.Subtotal,
			TierDiscount:   input.Amounts.TierDiscount,
			PointsDiscount: input.Amounts.PointsDiscount,
			Total:          input.Amounts.Total,
			PointsSpent:    input.Amounts.PointsSpent,
			PointsEarned:   input.Amounts.PointsEarned,
			Status:         entity.OrderStatusPending,
			ShippingAddr:   input.ShippingAddr,
			PaymentMethod:  input.PaymentMethod,
			Notes:          input.Notes,
			CreatedBy:      createdByUser,
		}
		if input.Admin != nil {
			order.CreatedBy = createdByAdmin
			adminID := input.Admin.ID
			order.AdminID = &adminID
			order.AdminName = input.Admin.Name
		}

		// The caller's subtotal must agree with the snapshots taken under lock.
		if !order.LinesSubtotal().Equal(order.Subtotal) {
			return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("subtotal does not match line prices"),
				"subtotal mismatch against price snapshots")
		}

		newBalance, err := points.Adjust(buyer.Points, order.PointsSpent, order.PointsEarned)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInsufficientPoints, "points adjustment rejected")
		}
		buyer.Points = newBalance

		if err := repoFactory.UserRepo().Update(ctx, buyer); err != nil {
			return errors.Wrap(err, "failed to persist points adjustment")
		}

		if err := srv.assignOrderNumber(ctx, repoFactory.OrderRepo(), order); err != nil {
			return err
		}

		if err := repoFactory.OrderRepo().Create(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicateOrderNumber) {
				return errors.Wrap(domainerrors.ErrCodeGenerationExhausted, "order number collided on insert")
			}

			return errors.Wrap(err, "failed to create order")
		}

		createdOrder = order

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute order creation transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Order created", slog.String("number", createdOrder.Number), slog.Any("orderID", createdOrder.ID))

	return createdOrder, nil
}

func validateCreateOrderInput(input *usecase.CreateOrderInput) error {
	if input == nil || len(input.Items) == 0 {
		return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("order has no items"), "empty cart")
	}
	if input.UserID == nil && input.Email == "" {
		return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("buyer reference is required"), "no buyer reference")
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("quantity must be positive"), "non-positive quantity")
		}
		if _, dup := seen[item.ProductID]; dup {
			return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("duplicate product in cart"), "duplicate product")
		}
		seen[item.ProductID] = struct{}{}
	}

	if input.Amounts.PointsSpent < 0 || input.Amounts.PointsEarned < 0 {
		return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("points figures must be non-negative"), "negative points figure")
	}

	return nil
}

// resolveBuyer loads and locks the buying account. In the point-of-sale flow
// an unknown email with an admin context synthesizes a minimal zero-balance
// account so the sale can complete at the counter.
func (srv *orderService) resolveBuyer(ctx context.Context, repoFactory repository.RepositoryFactory, input *usecase.CreateOrderInput) (*entity.User, error) {
	userRepo := repoFactory.UserRepo()

	if input.UserID != nil {
		buyer, err := userRepo.FindByIDForUpdate(ctx, *input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, errors.Wrap(domainerrors.ErrUserNotFound, "buyer not found by ID")
			}

			return nil, errors.Wrap(err, "failed to load buyer by ID")
		}

		return buyer, nil
	}

	existing, err := userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		buyer, lockErr := userRepo.FindByIDForUpdate(ctx, existing.ID)
		if lockErr != nil {
			return nil, errors.Wrap(lockErr, "failed to lock buyer row")
		}

		return buyer, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to load buyer by email")
	}

	if input.Admin == nil {
		return nil, errors.Wrap(domainerrors.ErrUserNotFound, "buyer not found by email")
	}

	return srv.synthesizeBuyer(ctx, userRepo, input)
}

// synthesizeBuyer creates the minimal account backing a point-of-sale order.
func (srv *orderService) synthesizeBuyer(ctx context.Context, userRepo repository.UserRepository, input *usecase.CreateOrderInput) (*entity.User, error) {
	name := input.ClientName
	if name == "" {
		name = strings.SplitN(input.Email, "@", 2)[0]
	}

	referralCode, err := uniqueReferralCode(ctx, userRepo, name, srv.retryLimit)
	if err != nil {
		return nil, err
	}

	buyer := &entity.User{
		Name:         name,
		Email:        input.Email,
		Role:         entity.RoleUser,
		MemberType:   entity.MemberTypeForEmail(input.Email),
		Level:        entity.DefaultLevel,
		Points:       0,
		ReferralCode: referralCode,
		Active:       true,
	}

	if err := userRepo.Create(ctx, buyer); err != nil {
		if errors.Is(err, repository.ErrDuplicateReferralCode) {
			return nil, errors.Wrap(domainerrors.ErrCodeGenerationExhausted, "referral code collided on insert")
		}

		return nil, errors.Wrap(err, "failed to create point-of-sale account")
	}

	srv.log(ctx).Info("Synthesized point-of-sale account", slog.String("email", buyer.Email), slog.Any("userID", buyer.ID))

	return buyer, nil
}

// consumeStock locks the product rows in a stable order, verifies and
// decrements stock and returns the snapshot lines in cart order.
func (srv *orderService) consumeStock(ctx context.Context, productRepo repository.ProductRepository, items []usecase.OrderItemInput) ([]*entity.OrderLine, error) {
	// Locking in sorted product order keeps concurrent carts from deadlocking
	// against each other.
	sorted := make([]usecase.OrderItemInput, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.Compare(sorted[i].ProductID.String(), sorted[j].ProductID.String()) < 0
	})

	products := make(map[uuid.UUID]*entity.Product, len(sorted))
	for _, item := range sorted {
		product, err := productRepo.FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found in cart")
			}

			return nil, errors.Wrap(err, "failed to lock product row")
		}

		if !product.HasStock(item.Quantity) {
			return nil, errors.Wrap(
				domainerrors.ErrInsufficientStock.WithDetails(product.Name),
				"insufficient stock for product",
			)
		}

		product.Stock -= item.Quantity
		if err := productRepo.Update(ctx, product); err != nil {
			return nil, errors.Wrap(err, "failed to decrement stock")
		}

		products[item.ProductID] = product
	}

	lines := make([]*entity.OrderLine, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		lines = append(lines, &entity.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
	}

	return lines, nil
}

// assignOrderNumber draws order numbers until one is free, bounded by the
// configured retry limit.
func (srv *orderService) assignOrderNumber(ctx context.Context, orderRepo repository.OrderRepository, order *entity.Order) error {
	for attempt := 0; attempt < srv.retryLimit; attempt++ {
		number, err := generateOrderNumber(time.Now())
		if err != nil {
			return errors.Wrap(err, "failed to generate order number")
		}

		taken, err := orderRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return errors.Wrap(err, "failed to check order number uniqueness")
		}
		if !taken {
			order.Number = number

			return nil
		}
	}

	return errors.Wrap(domainerrors.ErrCodeGenerationExhausted, "order number retries exhausted")
}

// UpdateOrder applies a status/notes patch. Status changes are validated
// against the closed transition table; nil patch fields are left untouched.
func (srv *orderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, patch *usecase.UpdateOrderInput) (*entity.Order, error) {
	if patch == nil || (patch.Status == nil && patch.Notes == nil) {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("empty patch"), "nothing to update")
	}

	var updatedOrder *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "order not found for update")
			}

			return errors.Wrap(err, "failed to load order for update")
		}

		if patch.Status != nil {
			next := entity.OrderStatus(*patch.Status)
			if !next.IsValid() {
				return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("unknown order status"), "unknown status")
			}
			if !order.Status.CanTransitionTo(next) {
				return errors.Wrap(
					domainerrors.ErrInvalidStatusTransition.WithDetails(order.Status.String()+" -> "+next.String()),
					"status transition rejected",
				)
			}
			order.Status = next
		}

		if patch.Notes != nil {
			order.Notes = *patch.Notes
		}

		if err := orderRepo.Update(ctx, order); err != nil {
			return errors.Wrap(err, "failed to persist order update")
		}

		updatedOrder = order

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute order update transaction", slog.Any("orderID", orderID), slog.Any("error", err))

		return nil, err
	}

	return updatedOrder, nil
}

// GetOrder retrieves a single order with its lines.
func (srv *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to get order")
	}

	return order, nil
}

// GetUserOrders retrieves all orders of an account, newest first.
func (srv *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user orders")
	}

	return orders, nil
}
