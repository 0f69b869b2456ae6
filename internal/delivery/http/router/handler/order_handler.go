package handler

import (
	"log/slog"
	"net/http"
	"time"

	"levelup/internal/delivery/http/response"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/repository"
	"levelup/internal/domain/service"
	"levelup/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderHandler holds dependencies for order fulfillment handlers. It prices
// the cart through the pricing policy before handing the figures to the
// fulfillment engine, which revalidates them against locked snapshots.
type OrderHandler struct {
	uc          usecase.OrderUsecase
	policy      service.PricingPolicy
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(
	uc usecase.OrderUsecase,
	policy service.PricingPolicy,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *OrderHandler {
	return &OrderHandler{
		uc:          uc,
		policy:      policy,
		userRepo:    userRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	// Email and ClientName drive the point-of-sale flow and are only honored
	// for administrative callers.
	Email         string             `json:"email" validate:"omitempty,email"`
	ClientName    string             `json:"client_name"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	PointsToSpend int                `json:"points_to_spend" validate:"gte=0"`
	ShippingAddr  addressRequest     `json:"shipping_address"`
	PaymentMethod string             `json:"payment_method"`
	Notes         string             `json:"notes"`
}

type updateOrderRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type orderLineView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderView struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	UserID         uuid.UUID       `json:"user_id"`
	Lines          []orderLineView `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TierDiscount   decimal.Decimal `json:"tier_discount"`
	PointsDiscount decimal.Decimal `json:"points_discount"`
	Total          decimal.Decimal `json:"total"`
	PointsSpent    int             `json:"points_spent"`
	PointsEarned   int             `json:"points_earned"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newOrderView(order *entity.Order) *orderView {
	view := &orderView{
		ID:             order.ID,
		Number:         order.Number,
		UserID:         order.UserID,
		Lines:          make([]orderLineView, 0, len(order.Lines)),
		Subtotal:       order.Subtotal,
		TierDiscount:   order.TierDiscount,
		PointsDiscount: order.PointsDiscount,
		Total:          order.Total,
		PointsSpent:    order.PointsSpent,
		PointsEarned:   order.PointsEarned,
		Status:         order.Status.String(),
		PaymentMethod:  order.PaymentMethod,
		Notes:          order.Notes,
		CreatedBy:      order.CreatedBy,
		CreatedAt:      order.CreatedAt,
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, orderLineView{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	return view
}

func newOrderViews(orders []*entity.Order) []*orderView {
	views := make([]*orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}

	return views
}

// CreateOrder handles order placement for both the storefront and the
// administrative point of sale.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}
	ctx := c.Request().Context()

	input := &usecase.CreateOrderInput{
		Items:         make([]usecase.OrderItemInput, 0, len(req.Items)),
		ShippingAddr:  req.ShippingAddr.toEntity(),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}

	// Resolve who the order is for. Administrators selling at the counter
	// identify the customer by email; everyone else buys for themselves.
	var quoteBuyer *entity.User
	if callerRole(c) == entity.RoleAdmin.String() && req.Email != "" {
		admin, err := h.userRepo.FindByID(ctx, caller)
		if err != nil {
			return errors.WithStack(err)
		}
		input.Email = req.Email
		input.ClientName = req.ClientName
		input.Admin = &usecase.AdminContext{ID: admin.ID, Name: admin.Name}

		quoteBuyer, err = h.userRepo.FindByEmail(ctx, req.Email)
		if errors.Is(err, repository.ErrUserNotFound) {
			// First purchase of a walk-in customer: quote with a fresh
			// zero-balance profile derived from the email.
			quoteBuyer = &entity.User{MemberType: entity.MemberTypeForEmail(req.Email)}
		} else if err != nil {
			return errors.WithStack(err)
		}
	} else {
		buyer, err := h.userRepo.FindByID(ctx, caller)
		if err != nil {
			return errors.WithStack(err)
		}
		input.UserID = &caller
		quoteBuyer = buyer
	}

	// Price the cart from catalog snapshots.
	quoteLines := make([]service.QuoteLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid product ID: "+item.ProductID)
		}
		product, err := h.productRepo.FindByID(ctx, productID)
		if err != nil {
			return errors.WithStack(err)
		}
		quoteLines = append(quoteLines, service.QuoteLine{Quantity: item.Quantity, UnitPrice: product.Price})
		input.Items = append(input.Items, usecase.OrderItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	quote, err := h.policy.Quote(quoteBuyer, quoteLines, req.PointsToSpend)
	if err != nil {
		return errors.WithStack(err)
	}
	input.Amounts = usecase.OrderAmountsInput{
		Subtotal:       quote.Subtotal,
		TierDiscount:   quote.TierDiscount,
		PointsDiscount: quote.PointsDiscount,
		Total:          quote.Total,
		PointsSpent:    quote.PointsSpent,
		PointsEarned:   quote.PointsEarned,
	}

	order, err := h.uc.CreateOrder(ctx, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newOrderView(order), "Order created successfully")
}

// GetOrder returns a single order. Customers can only read their own.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order ID")
	}

	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}

	order, err := h.uc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	if callerRole(c) != entity.RoleAdmin.String() && order.UserID != caller {
		return errors.WithStack(domainerrors.ErrOrderNotFound)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "")
}

// ListOrders returns the caller's order history. Administrators may inspect
// another account with the user_id query parameter.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Missing caller identity")
	}

	target := caller
	if requested := c.QueryParam("user_id"); requested != "" {
		if callerRole(c) != entity.RoleAdmin.String() {
			return response.Forbidden(c, "FORBIDDEN", "Cannot list another account's orders")
		}
		parsed, err := uuid.Parse(requested)
		if err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid user ID")
		}
		target = parsed
	}

	orders, err := h.uc.GetUserOrders(c.Request().Context(), target)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderViews(orders), "")
}

// UpdateOrder applies a status or notes patch to an order.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order ID")
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order patch")
	}

	order, err := h.uc.UpdateOrder(c.Request().Context(), orderID, &usecase.UpdateOrderInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Order updated successfully")
}
