package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusPaid},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusPaid, OrderStatusShipped},
		{OrderStatusPaid, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	rejected := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusPaid},
		{OrderStatusDelivered, OrderStatusCancelled},
	}
	for _, tt := range rejected {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	assert.True(t, OrderStatusPending.IsValid())
	assert.True(t, OrderStatusCancelled.IsValid())
	assert.False(t, OrderStatus("perdido").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestRedemptionStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct {
		from, to RedemptionStatus
	}{
		{RedemptionStatusPending, RedemptionStatusConfirmed},
		{RedemptionStatusPending, RedemptionStatusCancelled},
		{RedemptionStatusConfirmed, RedemptionStatusShipped},
		{RedemptionStatusConfirmed, RedemptionStatusCancelled},
		{RedemptionStatusShipped, RedemptionStatusDelivered},
		{RedemptionStatusShipped, RedemptionStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	rejected := []struct {
		from, to RedemptionStatus
	}{
		{RedemptionStatusPending, RedemptionStatusDelivered},
		{RedemptionStatusDelivered, RedemptionStatusCancelled},
		{RedemptionStatusCancelled, RedemptionStatusConfirmed},
	}
	for _, tt := range rejected {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestFulfillmentMethod_IsValid(t *testing.T) {
	assert.True(t, FulfillmentPickup.IsValid())
	assert.True(t, FulfillmentShipping.IsValid())
	assert.False(t, FulfillmentMethod("drone").IsValid())
}
