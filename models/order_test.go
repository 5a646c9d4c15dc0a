package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusRank(t *testing.T) {
	assert.Equal(t, 0, OrderStatusRank(OrderStatusPending))
	assert.Equal(t, 1, OrderStatusRank(OrderStatusCooking))
	assert.Equal(t, 2, OrderStatusRank(OrderStatusReady))
	assert.Equal(t, 3, OrderStatusRank(OrderStatusServed))
	assert.Equal(t, -1, OrderStatusRank("paid"))
}

func TestOrderActiveTotalSkipsCancelledItems(t *testing.T) {
	order := Order{OrderItems: []OrderItem{
		{LinePrice: 100, Status: OrderItemStatusActive},
		{LinePrice: 50, Status: OrderItemStatusActive},
		{LinePrice: 70, Status: OrderItemStatusCancelled},
	}}
	assert.Equal(t, 150.0, order.ActiveTotal())
}

func TestIsValidRoleAndPaymentMethod(t *testing.T) {
	assert.True(t, IsValidRole(RoleWaiter))
	assert.False(t, IsValidRole("cleaner"))
	assert.True(t, IsValidPaymentMethod(PaymentMethodCredit))
	assert.False(t, IsValidPaymentMethod("qris"))
}

func TestOrderLabel(t *testing.T) {
	order := Order{ID: 7, TableID: 3}
	assert.Equal(t, "Order #7 (table 3)", order.Label())
}
