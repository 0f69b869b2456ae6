package handler

import (
	"log/slog"
	"net/http"
	"time"

	"levelup/internal/delivery/http/response"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RedemptionHandler holds dependencies for points-redemption handlers.
type RedemptionHandler struct {
	uc     usecase.RedemptionUsecase
	logger *slog.Logger
}

// NewRedemptionHandler is the constructor for RedemptionHandler, injected by Fx.
func NewRedemptionHandler(uc usecase.RedemptionUsecase, logger *slog.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		uc:     uc,
		logger: logger,
	}
}

type createRedemptionRequest struct {
	ProductID    string         `json:"product_id" validate:"required,uuid"`
	Fulfillment  string         `json:"fulfillment" validate:"required"`
	ShippingAddr addressRequest `json:"shipping_address"`
	Notes        string         `json:"notes"`
}

type updateRedemptionRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type redemptionView struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ProductID   uuid.UUID `json:"product_id"`
	PointsSpent int       `json:"points_spent"`
	Quantity    int       `json:"quantity"`
	Fulfillment string    `json:"fulfillment"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRedemptionView(redemption *entity.Redemption) *redemptionView {
	return &redemptionView{
		ID:          redemption.ID,
		UserID:      redemption.UserID,
		ProductID:   redemption.ProductID,
		PointsSpent: redemption.PointsSpent,
		Quantity:    redemption.Quantity,
		Fulfillment: string(redemption.Fulfillment),
		Status:      redemption.Status.String(),
		Notes:       redemption.Notes,
		CreatedAt:   redemption.CreatedAt,
	}
}

func newRedemptionViews(redemptions []*entity.Redemption) []*redemptionView {
	views := make([]*redemptionView, 0, len(redemptions))
	for _, redemption := range redemptions {
		views = append(views, newRedemptionView(redemption))
	}

	return views
}

// CreateRedemption exchanges the caller's points for a reward product.
func (h *RedemptionHandler) CreateRedemption(c echo.Context) error {
	var req createRedemptionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product ID")
	}

	redemption, err := h.uc.CreateRedemption(c.Request().Context(), &usecase.CreateRedemptionInput{
		UserID:       caller,
		ProductID:    productID,
		Fulfillment:  req.Fulfillment,
		ShippingAddr: req.ShippingAddr.toEntity(),
		Notes:        req.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newRedemptionView(redemption), "Redemption created successfully")
}

// GetRedemption returns a single redemption. Customers can only read their own.
func (h *RedemptionHandler) GetRedemption(c echo.Context) error {
	redemptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption ID")
	}

	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}

	redemption, err := h.uc.GetRedemption(c.Request().Context(), redemptionID)
	if err != nil {
		return errors.WithStack(err)
	}

	if callerRole(c) != entity.RoleAdmin.String() && redemption.UserID != caller {
		return errors.WithStack(domainerrors.ErrRedemptionNotFound)
	}

	return response.Success(c, http.StatusOK, newRedemptionView(redemption), "")
}

// ListRedemptions returns the caller's redemption history. Administrators may
// inspect another account with the user_id query parameter.
func (h *RedemptionHandler) ListRedemptions(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}

	target := caller
	if requested := c.QueryParam("user_id"); requested != "" {
		if callerRole(c) != entity.RoleAdmin.String() {
			return response.Forbidden(c, "FORBIDDEN", "Cannot list another account's redemptions")
		}
		parsed, err := uuid.Parse(requested)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid user ID")
		}
		target = parsed
	}

	redemptions, err := h.uc.GetUserRedemptions(c.Request().Context(), target)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newRedemptionViews(redemptions), "")
}

// UpdateRedemption applies a status or notes patch to a redemption.
func (h *RedemptionHandler) UpdateRedemption(c echo.Context) error {
	redemptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption ID")
	}

	var req updateRedemptionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption patch")
	}

	redemption, err := h.uc.UpdateRedemption(c.Request().Context(), redemptionID, &usecase.UpdateRedemptionInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newRedemptionView(redemption), "Redemption updated successfully")
}
