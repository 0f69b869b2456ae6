package impl

import (
	"context"
	"log/slog"

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

// redemptionService implements the RedemptionUsecase interface.
type redemptionService struct {
	txManager      repository.TransactionManager
	redemptionRepo repository.RedemptionRepository
	consumeStock   bool
	logger         *slog.Logger
}

// RedemptionServiceParams holds dependencies for redemptionService, injected by Fx.
type RedemptionServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	RedemptionRepo repository.RedemptionRepository
	Config         *config.Config
	Logger         *slog.Logger
}

// NewRedemptionService is the constructor for redemptionService.
func NewRedemptionService(params RedemptionServiceParams) usecase.RedemptionUsecase {
	consumeStock := false
	if params.Config != nil && params.Config.Loyalty != nil {
		consumeStock = params.Config.Loyalty.RedemptionsConsumeStock
	}

	return &redemptionService{
		txManager:      params.TxManager,
		redemptionRepo: params.RedemptionRepo,
		consumeStock:   consumeStock,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRedemption exchanges points for a product in a single transaction.
// The points cost is snapshotted on the record; whether catalog stock is
// consumed is a configuration policy, off by default.
func (srv *redemptionService) CreateRedemption(ctx context.Context, input *usecase.CreateRedemptionInput) (*entity.Redemption, error) {
	fulfillment := entity.FulfillmentMethod(input.Fulfillment)
	if !fulfillment.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("unknown fulfillment method"), "invalid fulfillment method")
	}
	if fulfillment == entity.FulfillmentShipping && input.ShippingAddr.IsZero() {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("shipping address is required"), "missing shipping address")
	}

	srv.log(ctx).Info("Creating redemption", slog.Any("userID", input.UserID), slog.Any("productID", input.ProductID))

	var createdRedemption *entity.Redemption
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		productRepo := repoFactory.ProductRepo()

		account, err := userRepo.FindByIDForUpdate(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "account not found for redemption")
			}

			return errors.Wrap(err, "failed to lock account row")
		}

		product, err := srv.loadProduct(ctx, productRepo, input.ProductID)
		if err != nil {
			return err
		}

		if !product.Redeemable {
			return errors.Wrap(domainerrors.ErrProductNotRedeemable, "product not redeemable")
		}

		if !account.CanSpendPoints(product.PointsCost) {
			return errors.Wrap(domainerrors.ErrInsufficientPoints, "points balance does not cover redemption cost")
		}

		if srv.consumeStock {
			if !product.HasStock(1) {
				return errors.Wrap(domainerrors.ErrInsufficientStock.WithDetails(product.Name), "insufficient stock for redemption")
			}

			product.Stock--
			if err := productRepo.Update(ctx, product); err != nil {
				return errors.Wrap(err, "failed to decrement redemption stock")
			}
		}

		newBalance, err := points.Adjust(account.Points, product.PointsCost, 0)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInsufficientPoints, "points adjustment rejected")
		}
		account.Points = newBalance

		if err := userRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to persist points debit")
		}

		redemption := &entity.Redemption{
			UserID:       account.ID,
			ProductID:    product.ID,
			PointsSpent:  product.PointsCost,
			Quantity:     1,
			Fulfillment:  fulfillment,
			Status:       entity.RedemptionStatusPending,
			ShippingAddr: input.ShippingAddr,
			Notes:        input.Notes,
		}

		if err := repoFactory.RedemptionRepo().Create(ctx, redemption); err != nil {
			return errors.Wrap(err, "failed to create redemption")
		}

		createdRedemption = redemption

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute redemption transaction",
			slog.Any("userID", input.UserID), slog.Any("productID", input.ProductID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Redemption created", slog.Any("redemptionID", createdRedemption.ID))

	return createdRedemption, nil
}

// loadProduct takes a row lock only when redemptions consume stock; a pure
// points debit does not need to serialize against concurrent orders.
func (srv *redemptionService) loadProduct(ctx context.Context, productRepo repository.ProductRepository, productID uuid.UUID) (*entity.Product, error) {
	find := productRepo.FindByID
	if srv.consumeStock {
		find = productRepo.FindByIDForUpdate
	}

	product, err := find(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found for redemption")
		}

		return nil, errors.Wrap(err, "failed to load product for redemption")
	}

	return product, nil
}

// UpdateRedemption applies a status/notes patch. Status changes are validated
// against the closed transition table; nil patch fields are left untouched.
func (srv *redemptionService) UpdateRedemption(ctx context.Context, redemptionID uuid.UUID, patch *usecase.UpdateRedemptionInput) (*entity.Redemption, error) {
	if patch == nil || (patch.Status == nil && patch.Notes == nil) {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("empty patch"), "nothing to update")
	}

	var updatedRedemption *entity.Redemption
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		redemptionRepo := repoFactory.RedemptionRepo()

		redemption, err := redemptionRepo.FindByID(ctx, redemptionID)
		if err != nil {
			if errors.Is(err, repository.ErrRedemptionNotFound) {
				return errors.Wrap(domainerrors.ErrRedemptionNotFound, "redemption not found for update")
			}

			return errors.Wrap(err, "failed to load redemption for update")
		}

		if patch.Status != nil {
			next := entity.RedemptionStatus(*patch.Status)
			if !next.IsValid() {
				return errors.Wrap(domainerrors.ErrInvalidInput.WithDetails("unknown redemption status"), "unknown status")
			}
			if !redemption.Status.CanTransitionTo(next) {
				return errors.Wrap(
					domainerrors.ErrInvalidStatusTransition.WithDetails(redemption.Status.String()+" -> "+next.String()),
					"status transition rejected",
				)
			}
			redemption.Status = next
		}

		if patch.Notes != nil {
			redemption.Notes = *patch.Notes
		}

		if err := redemptionRepo.Update(ctx, redemption); err != nil {
			return errors.Wrap(err, "failed to persist redemption update")
		}

		updatedRedemption = redemption

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute redemption update transaction", slog.Any("redemptionID", redemptionID), slog.Any("error", err))

		return nil, err
	}

	return updatedRedemption, nil
}

// GetRedemption retrieves a single redemption.
func (srv *redemptionService) GetRedemption(ctx context.Context, redemptionID uuid.UUID) (*entity.Redemption, error) {
	redemption, err := srv.redemptionRepo.FindByID(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, repository.ErrRedemptionNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRedemptionNotFound, "redemption not found")
		}

		return nil, errors.Wrap(err, "failed to get redemption")
	}

	return redemption, nil
}

// GetUserRedemptions retrieves all redemptions of an account, newest first.
func (srv *redemptionService) GetUserRedemptions(ctx context.Context, userID uuid.UUID) ([]*entity.Redemption, error) {
	redemptions, err := srv.redemptionRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user redemptions")
	}

	return redemptions, nil
}
