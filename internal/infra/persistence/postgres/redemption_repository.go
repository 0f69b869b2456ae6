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

// redemptionRepository implements the repository.RedemptionRepository interface.
type redemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository is the constructor for redemptionRepository.
func NewRedemptionRepository(db *gorm.DB) repository.RedemptionRepository {
	return &redemptionRepository{
		db: db,
	}
}

// Create persists a new redemption record.
func (repo *redemptionRepository) Create(ctx context.Context, redemption *entity.Redemption) error {
	redemptionM := fromRedemptionDomain(redemption)

	if err := repo.db.WithContext(ctx).Create(redemptionM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidInput.WrapMessage("invalid user or product reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrInvalidInput.WrapMessage("missing required redemption information")
		}
		return domainerrors.NewDatabaseExecuteError(err, "failed to create redemption")
	}

	// Update the entity with generated values
	redemption.ID = redemptionM.ID
	redemption.CreatedAt = redemptionM.CreatedAt
	redemption.UpdatedAt = redemptionM.UpdatedAt

	return nil
}

// FindByID retrieves a redemption by its unique ID.
func (repo *redemptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Redemption, error) {
	var redemptionM model.RedemptionModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&redemptionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRedemptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find redemption by ID")
	}

	return toRedemptionDomain(&redemptionM), nil
}

// FindAllByUser retrieves all redemptions of an account, newest first.
func (repo *redemptionRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Redemption, error) {
	var redemptionModels []*model.RedemptionModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&redemptionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find redemptions by user")
	}

	redemptions := make([]*entity.Redemption, 0, len(redemptionModels))
	for _, redemptionM := range redemptionModels {
		redemptions = append(redemptions, toRedemptionDomain(redemptionM))
	}

	return redemptions, nil
}

// Update persists mutations to an existing redemption (status, notes).
func (repo *redemptionRepository) Update(ctx context.Context, redemption *entity.Redemption) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RedemptionModel{}).
		Where("id = ?", redemption.ID).
		Updates(map[string]any{
			"status": redemption.Status.String(),
			"notes":  redemption.Notes,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update redemption")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRedemptionNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toRedemptionDomain converts a GORM RedemptionModel to a domain Redemption entity.
func toRedemptionDomain(data *model.RedemptionModel) *entity.Redemption {
	if data == nil {
		return nil
	}

	return &entity.Redemption{
		ID:          data.ID,
		UserID:      data.UserID,
		ProductID:   data.ProductID,
		PointsSpent: data.PointsSpent,
		Quantity:    data.Quantity,
		Fulfillment: entity.FulfillmentMethod(data.Fulfillment),
		Status:      entity.RedemptionStatus(data.Status),
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
		Notes:     data.Notes,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromRedemptionDomain converts a domain Redemption entity to a GORM RedemptionModel.
func fromRedemptionDomain(data *entity.Redemption) *model.RedemptionModel {
	if data == nil {
		return nil
	}

	return &model.RedemptionModel{
		ID:             data.ID,
		UserID:         data.UserID,
		ProductID:      data.ProductID,
		PointsSpent:    data.PointsSpent,
		Quantity:       data.Quantity,
		Fulfillment:    string(data.Fulfillment),
		Status:         data.Status.String(),
		Notes:          data.Notes,
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
	}
}
