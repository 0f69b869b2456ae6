package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of states an order can be in. Transitions are
// validated against the table below; arbitrary status strings are rejected.
type OrderStatus string

const (
	// OrderStatusPending is the initial state of every order.
	OrderStatusPending OrderStatus = "pendiente"
	// OrderStatusPaid means payment has been confirmed.
	OrderStatusPaid OrderStatus = "pagado"
	// OrderStatusShipped means the order left the warehouse.
	OrderStatusShipped OrderStatus = "enviado"
	// OrderStatusDelivered is the terminal happy-path state.
	OrderStatusDelivered OrderStatus = "entregado"
	// OrderStatusCancelled is the terminal administrative state.
	OrderStatusCancelled OrderStatus = "cancelado"
)

// orderTransitions is the allowed transition table.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Order is an immutable purchase record. An order and its lines are created
// together atomically; only status and notes may change afterwards.
type Order struct {
	ID             uuid.UUID
	Number         string    // Unique human-readable order number, ORD-YYYYMMDD-NNNNN.
	UserID         uuid.UUID // Owning account.
	Lines          []*OrderLine
	Subtotal       decimal.Decimal // Always equals the sum of line quantity x unit price.
	TierDiscount   decimal.Decimal // Institutional member discount, policy-supplied.
	PointsDiscount decimal.Decimal // Currency value of points spent, policy-supplied.
	Total          decimal.Decimal
	PointsSpent    int
	PointsEarned   int
	Status         OrderStatus
	ShippingAddr   Address // Snapshot at purchase time.
	PaymentMethod  string
	Notes          string
	CreatedBy      string     // "usuario" or "admin" when placed through point of sale.
	AdminID        *uuid.UUID // Administrator who placed the order, when applicable.
	AdminName      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderLine is one product-quantity entry within an order. The unit price is
// a snapshot taken at purchase time; later catalog price changes do not
// affect historical orders.
type OrderLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string // Snapshot for receipts, in case the product is renamed.
	Quantity    int
	UnitPrice   decimal.Decimal
}

// LineTotal returns quantity x unit price for the line.
func (l *OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesSubtotal sums all line totals of the order.
func (o *Order) LinesSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range o.Lines {
		sum = sum.Add(line.LineTotal())
	}

	return sum
}
