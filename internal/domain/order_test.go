package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusOutForDelivery, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},

		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusOutForDelivery, OrderStatusReady, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("shipped"), false},
		{OrderStatus("shipped"), OrderStatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_TerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		for _, next := range AllOrderStatuses() {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestComputeTotals_DeliveryAndPickup(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: decimal.NewFromInt(2500), Quantity: decimal.NewFromInt(2)},
		{UnitPrice: decimal.NewFromInt(5000), Quantity: decimal.NewFromInt(1)},
	}
	fee := decimal.NewFromInt(2000)

	delivery := ComputeTotals(items, DeliveryTypeDelivery, fee)
	assert.True(t, delivery.Subtotal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, delivery.DeliveryFee.Equal(fee))
	assert.True(t, delivery.Total.Equal(decimal.NewFromInt(12000)))

	pickup := ComputeTotals(items, DeliveryTypePickup, fee)
	assert.True(t, pickup.DeliveryFee.IsZero())
	assert.True(t, pickup.Total.Equal(decimal.NewFromInt(10000)))
}

func TestComputeTotals_FractionalQuantities(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: decimal.NewFromInt(8000), Quantity: decimal.RequireFromString("1.5")},
	}

	totals := ComputeTotals(items, DeliveryTypePickup, decimal.Zero)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(12000)))
}

func TestComputeTotals_RoundsLinesToCents(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: decimal.RequireFromString("4999.99"), Quantity: decimal.RequireFromString("0.333")},
		{UnitPrice: decimal.RequireFromString("1249.99"), Quantity: decimal.RequireFromString("0.125")},
	}

	totals := ComputeTotals(items, DeliveryTypeDelivery, decimal.RequireFromString("1500"))

	// 1664.99667 and 156.24875 round to 1665.00 and 156.25
	assert.True(t, LineTotal(items[0].UnitPrice, items[0].Quantity).Equal(decimal.RequireFromString("1665")))
	assert.True(t, LineTotal(items[1].UnitPrice, items[1].Quantity).Equal(decimal.RequireFromString("156.25")))
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("1821.25")))
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("3321.25")))
}

func TestFitsScale(t *testing.T) {
	assert.True(t, FitsScale(decimal.RequireFromString("0.333"), QuantityScale))
	assert.True(t, FitsScale(decimal.NewFromInt(2), QuantityScale))
	assert.False(t, FitsScale(decimal.RequireFromString("0.3333"), QuantityScale))
	assert.False(t, FitsScale(decimal.RequireFromString("0.0004"), QuantityScale))
	assert.True(t, FitsScale(decimal.RequireFromString("5000.55"), MoneyScale))
	assert.False(t, FitsScale(decimal.RequireFromString("5000.555"), MoneyScale))
}

func TestPaymentMethod_Label(t *testing.T) {
	assert.Equal(t, "MTN Mobile Money", PaymentMethodMTNMoMo.Label())
	assert.Equal(t, "crypto", PaymentMethod("crypto").Label())
}
