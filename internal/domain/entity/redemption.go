package entity

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus is the closed set of states a redemption can be in.
type RedemptionStatus string

const (
	// RedemptionStatusPending is the initial state of every redemption.
	RedemptionStatusPending RedemptionStatus = "pendiente"
	// RedemptionStatusConfirmed means staff accepted the redemption.
	RedemptionStatusConfirmed RedemptionStatus = "confirmado"
	// RedemptionStatusShipped means the reward left the warehouse.
	RedemptionStatusShipped RedemptionStatus = "enviado"
	// RedemptionStatusDelivered is the terminal happy-path state.
	RedemptionStatusDelivered RedemptionStatus = "entregado"
	// RedemptionStatusCancelled is the terminal administrative state.
	RedemptionStatusCancelled RedemptionStatus = "cancelado"
)

// redemptionTransitions is the allowed transition table.
var redemptionTransitions = map[RedemptionStatus][]RedemptionStatus{
	RedemptionStatusPending:   {RedemptionStatusConfirmed, RedemptionStatusCancelled},
	RedemptionStatusConfirmed: {RedemptionStatusShipped, RedemptionStatusCancelled},
	RedemptionStatusShipped:   {RedemptionStatusDelivered, RedemptionStatusCancelled},
}

// String returns the string representation of the status.
func (s RedemptionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s RedemptionStatus) IsValid() bool {
	switch s {
	case RedemptionStatusPending, RedemptionStatusConfirmed, RedemptionStatusShipped,
		RedemptionStatusDelivered, RedemptionStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s RedemptionStatus) CanTransitionTo(next RedemptionStatus) bool {
	for _, allowed := range redemptionTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// FulfillmentMethod is how a redeemed reward reaches the customer.
type FulfillmentMethod string

const (
	// FulfillmentPickup means the customer collects the reward in store.
	FulfillmentPickup FulfillmentMethod = "retiro"
	// FulfillmentShipping means the reward is shipped to the given address.
	FulfillmentShipping FulfillmentMethod = "envio"
)

// IsValid checks if the fulfillment method is a known value.
func (m FulfillmentMethod) IsValid() bool {
	return m == FulfillmentPickup || m == FulfillmentShipping
}

// Redemption records an exchange of points for a product without a monetary
// charge. PointsSpent snapshots the product's points cost at redemption time,
// so later catalog changes never alter historical records.
type Redemption struct {
	ID            uuid.UUID
	UserID        uuid.UUID // Owning account.
	ProductID     uuid.UUID
	PointsSpent   int // Snapshot of the product's points cost.
	Quantity      int // Fixed at 1 per redemption.
	Fulfillment   FulfillmentMethod
	Status        RedemptionStatus
	ShippingAddr  Address // Snapshot, used when Fulfillment is shipping.
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
