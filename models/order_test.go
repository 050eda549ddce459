package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nickflanagn24/bookstore/models"
)

func TestValidOrderTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusProcessing, true},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},

		{models.OrderStatusPending, models.OrderStatusShipped, false},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, false},
		{models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusShipped, false},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
		{models.OrderStatusDelivered, models.OrderStatusDelivered, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, models.ValidOrderTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderTotals(t *testing.T) {
	order := models.Order{
		TotalAmount: 4397,
		Items: []models.OrderItem{
			{BookTitle: "A", UnitPrice: 1099, Quantity: 3},
			{BookTitle: "B", UnitPrice: 1100, Quantity: 1},
		},
	}

	assert.Equal(t, 4, order.TotalItems())
	assert.Equal(t, int64(4397), order.TotalPrice())
	assert.Equal(t, order.TotalAmount, order.TotalPrice())
}

func TestOrderItemTotalPrice(t *testing.T) {
	item := models.OrderItem{UnitPrice: 999, Quantity: 3}
	assert.Equal(t, int64(2997), item.TotalPrice())
}

func TestCustomerFullName(t *testing.T) {
	order := models.Order{CustomerFirstName: "Robin", CustomerLastName: "Lee"}
	assert.Equal(t, "Robin Lee", order.CustomerFullName())
}
