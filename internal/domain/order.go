package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a step in the order lifecycle
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderTransitions lists the forward moves of each status. Cancellation is
// handled separately since it is reachable from every non-terminal status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed},
	OrderStatusConfirmed:      {OrderStatusPreparing},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusReady},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusReady:          {OrderStatusDelivered},
	OrderStatusDelivered:      nil,
	OrderStatusCancelled:      nil,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an operator may move an order from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllOrderStatuses returns every status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusOutForDelivery,
		OrderStatusReady,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// DeliveryType selects between home delivery and store pickup
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// PaymentMethod is how the customer intends to pay
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
	PaymentMethodMTNMoMo        PaymentMethod = "mtn_momo"
	PaymentMethodAirtelMoney    PaymentMethod = "airtel_money"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// Label returns the human readable payment method name
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCashOnDelivery:
		return "Cash on Delivery"
	case PaymentMethodMTNMoMo:
		return "MTN Mobile Money"
	case PaymentMethodAirtelMoney:
		return "Airtel Money"
	case PaymentMethodBankTransfer:
		return "Bank Transfer"
	default:
		return string(m)
	}
}

// PaymentStatus tracks settlement of the order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents a customer order
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	Phone         string          `json:"phone" db:"phone"`
	Email         string          `json:"email,omitempty" db:"email"`
	DeliveryType  DeliveryType    `json:"delivery_type" db:"delivery_type"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee" db:"delivery_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency      string          `json:"currency" db:"currency"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Items    []OrderItem    `json:"items"`
	Delivery *OrderDelivery `json:"delivery,omitempty"`
}

// OrderItem is an immutable order line
type OrderItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty" db:"product_id"`
	ProductTitle   string          `json:"product_title" db:"product_title"`
	Unit           string          `json:"unit" db:"unit"`
	UnitMultiplier decimal.Decimal `json:"unit_multiplier" db:"unit_multiplier"`
	Quantity       decimal.Decimal `json:"quantity" db:"requested_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
}

// OrderDelivery holds where and to whom the order goes
type OrderDelivery struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"order_id" db:"order_id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	DeliveryAddress string          `json:"delivery_address" db:"delivery_address"`
	DeliveryPhone   string          `json:"delivery_phone" db:"delivery_phone"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee" db:"delivery_fee"`
	DeliveryZone    string          `json:"delivery_zone" db:"delivery_zone"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// OrderTotals is the result of pricing an order
type OrderTotals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// LineTotal prices a single line, rounded to cents
func LineTotal(unitPrice, quantity decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(quantity))
}

// ComputeTotals sums the order lines and applies the delivery fee. Pickup
// orders never carry a fee.
func ComputeTotals(items []OrderItem, deliveryType DeliveryType, deliveryFee decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item.UnitPrice, item.Quantity))
	}

	fee := RoundMoney(deliveryFee)
	if deliveryType == DeliveryTypePickup {
		fee = decimal.Zero
	}

	return OrderTotals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// OrderStats summarises orders for the admin dashboard
type OrderStats struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
}
