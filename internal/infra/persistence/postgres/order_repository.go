package postgres

import (
	"context"

	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/repository"
	"levelup/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements the repository.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{
		db: db,
	}
}

// Create persists a new order together with all of its lines.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateOrderNumber
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidInput.WrapMessage("invalid user or product reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrInvalidInput.WrapMessage("missing required order information")
		}
		// For other database errors, return a generic database error
		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	// Update the entity with generated values
	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt
	for i, lineM := range orderM.Lines {
		order.Lines[i].ID = lineM.ID
		order.Lines[i].OrderID = lineM.OrderID
	}

	return nil
}

// FindByID retrieves an order with its lines by its unique ID.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel

	if err := repo.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by ID")
	}

	return toOrderDomain(&orderM), nil
}

// FindAllByUser retrieves all orders of an account, newest first.
func (repo *orderRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	var orderModels []*model.OrderModel

	if err := repo.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find orders by user")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		orders = append(orders, toOrderDomain(orderM))
	}

	return orders, nil
}

// ExistsByNumber reports whether an order number is already taken.
func (repo *orderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check order number existence")
	}

	return count > 0, nil
}

// Update persists mutations to an existing order. Only status and notes are
// mutable; monetary figures and lines are immutable once created.
func (repo *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status": order.Status.String(),
			"notes":  order.Notes,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order")
	}

	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	lines := make([]*entity.OrderLine, 0, len(data.Lines))
	for _, lineM := range data.Lines {
		lines = append(lines, &entity.OrderLine{
			ID:          lineM.ID,
			OrderID:     lineM.OrderID,
			ProductID:   lineM.ProductID,
			ProductName: lineM.ProductName,
			Quantity:    lineM.Quantity,
			UnitPrice:   lineM.UnitPrice,
		})
	}

	return &entity.Order{
		ID:             data.ID,
		Number:         data.Number,
		UserID:         data.UserID,
		Lines:          lines,
		Subtotal:       data.Subtotal,
		TierDiscount:   data.TierDiscount,
		PointsDiscount: data.PointsDiscount,
		Total:          data.Total,
		PointsSpent:    data.PointsSpent,
		PointsEarned:   data.PointsEarned,
		Status:         entity.OrderStatus(data.Status),
		ShippingAddr: entity.Address{
			Name:       data.ShipName,
			Street:     data.ShipStreet,
			Number:     data.ShipNumber,
			Apartment:  data.ShipApartment,
			City:       data.ShipCity,
			Commune:    data.ShipCommune,
			Region:     data.ShipRegion,
			PostalCode: data.ShipPostalCode,
		},
		PaymentMethod: data.PaymentMethod,
		Notes:         data.Notes,
		CreatedBy:     data.CreatedBy,
		AdminID:       data.AdminID,
		AdminName:     data.AdminName,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromOrderDomain converts a domain Order entity to a GORM OrderModel.
func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	lines := make([]model.OrderLineModel, 0, len(data.Lines))
	for _, line := range data.Lines {
		lines = append(lines, model.OrderLineModel{
			ID:          line.ID,
			OrderID:     line.OrderID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	return &model.OrderModel{
		ID:             data.ID,
		Number:         data.Number,
		UserID:         data.UserID,
		Subtotal:       data.Subtotal,
		TierDiscount:   data.TierDiscount,
		PointsDiscount: data.PointsDiscount,
		Total:          data.Total,
		PointsSpent:    data.PointsSpent,
		PointsEarned:   data.PointsEarned,
		Status:         data.Status.String(),
		PaymentMethod:  data.PaymentMethod,
		Notes:          data.Notes,
		CreatedBy:      data.CreatedBy,
		AdminID:        data.AdminID,
		AdminName:      data.AdminName,
		ShipName:       data.ShippingAddr.Name,
		ShipStreet:     data.ShippingAddr.Street,
		ShipNumber:     data.ShippingAddr.Number,
		ShipApartment:  data.ShippingAddr.Apartment,
		ShipCity:       data.ShippingAddr.City,
		ShipCommune:    data.ShippingAddr.Commune,
		ShipRegion:     data.ShippingAddr.Region,
		ShipPostalCode: data.ShippingAddr.PostalCode,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
		Lines:          lines,
	}
}
