package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"
	"german-butchery/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one requested line. Prices are resolved from the catalog.
type OrderItemInput struct {
	ProductID uuid.UUID
	Unit      string
	Quantity  decimal.Decimal
}

// OrderInput carries everything the customer supplies at checkout
type OrderInput struct {
	CustomerName    string
	Phone           string
	Email           string
	DeliveryType    domain.DeliveryType
	DeliveryAddress string
	DeliveryZoneID  *uuid.UUID
	PaymentMethod   domain.PaymentMethod
	Notes           string
	Items           []OrderItemInput
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, in OrderInput) (*domain.Order, error)
	List(ctx context.Context, status string, page, limit int) (domain.Page[*domain.Order], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NotifyLink(ctx context.Context, id uuid.UUID) (string, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	zoneRepo    repository.DeliveryZoneRepository
	countryCode string
}

// NewOrderService creates a new instance of OrderService. countryCode is
// used to normalise customer phone numbers in deep links.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	zoneRepo repository.DeliveryZoneRepository,
	countryCode string,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		zoneRepo:    zoneRepo,
		countryCode: countryCode,
	}
}

// Create prices the requested lines against the catalog and stores the order
// as pending.
func (s *orderService) Create(ctx context.Context, in OrderInput) (*domain.Order, error) {
	if err := validateOrderInput(&in); err != nil {
		return nil, err
	}

	items, currency, err := s.priceItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.New(),
		CustomerName:  in.CustomerName,
		Phone:         in.Phone,
		Email:         in.Email,
		DeliveryType:  in.DeliveryType,
		Currency:      currency,
		Status:        domain.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: domain.PaymentStatusPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}

	fee := decimal.Zero
	if in.DeliveryType == domain.DeliveryTypeDelivery {
		delivery := &domain.OrderDelivery{
			CustomerName:    in.CustomerName,
			DeliveryAddress: in.DeliveryAddress,
			DeliveryPhone:   in.Phone,
			CreatedAt:       now,
		}
		if in.DeliveryZoneID != nil {
			zone, err := s.zoneRepo.FindByID(ctx, *in.DeliveryZoneID)
			if err != nil {
				if errors.Is(err, repository.ErrDeliveryZoneNotFound) {
					return nil, validationError("unknown delivery zone")
				}
				return nil, fmt.Errorf("failed to get delivery zone: %w", err)
			}
			if !zone.IsActive {
				return nil, validationError("delivery zone %q is not served", zone.Name)
			}
			fee = zone.Fee
			delivery.DeliveryZone = zone.Name
		}
		delivery.DeliveryFee = fee
		order.Delivery = delivery
	}

	totals := domain.ComputeTotals(items, in.DeliveryType, fee)
	order.Subtotal = totals.Subtotal
	order.DeliveryFee = totals.DeliveryFee
	order.TotalAmount = totals.Total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	stored, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}
	return stored, nil
}

func (s *orderService) priceItems(ctx context.Context, in []OrderItemInput) ([]domain.OrderItem, string, error) {
	products := make(map[uuid.UUID]*domain.Product, len(in))
	items := make([]domain.OrderItem, 0, len(in))
	currency := ""

	for _, line := range in {
		product, ok := products[line.ProductID]
		if !ok {
			p, err := s.productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return nil, "", fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
				}
				return nil, "", fmt.Errorf("failed to get product: %w", err)
			}
			products[line.ProductID] = p
			product = p
		}
		if !product.IsActive {
			return nil, "", fmt.Errorf("%w: %s", ErrProductUnavailable, product.Title)
		}

		unit := strings.TrimSpace(line.Unit)
		if unit == "" {
			unit = product.DefaultUnit()
		}
		multiplier, err := product.Multiplier(unit)
		if err != nil {
			return nil, "", validationError("%s is not sold per %q", product.Title, unit)
		}

		if currency == "" {
			currency = product.Currency
		} else if product.Currency != currency {
			return nil, "", validationError("products priced in different currencies cannot share an order")
		}

		unitPrice := domain.RoundMoney(product.PricePerBaseUnit.Mul(multiplier))
		productID := product.ID
		items = append(items, domain.OrderItem{
			ID:             uuid.New(),
			ProductID:      &productID,
			ProductTitle:   product.Title,
			Unit:           unit,
			UnitMultiplier: multiplier,
			Quantity:       line.Quantity,
			UnitPrice:      unitPrice,
			TotalPrice:     domain.LineTotal(unitPrice, line.Quantity),
		})
	}

	return items, currency, nil
}

func (s *orderService) List(ctx context.Context, status string, page, limit int) (domain.Page[*domain.Order], error) {
	var filter *domain.OrderStatus
	if status != "" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return domain.Page[*domain.Order]{}, validationError("unknown order status %q", status)
		}
		filter = &st
	}

	req := domain.NewPageRequest(page, limit)
	orders, total, err := s.orderRepo.List(ctx, filter, req)
	if err != nil {
		return domain.Page[*domain.Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}

	return domain.NewPage(orders, req, total), nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// UpdateStatus applies an operator transition. Setting the current status
// again is a no-op.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	next := domain.OrderStatus(status)
	if !next.Valid() {
		return nil, validationError("unknown order status %q", status)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, next)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, next); err != nil {
		if errors.Is(err, repository.ErrOrderStatusChanged) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// NotifyLink returns a deep link that messages the customer the current status
func (s *orderService) NotifyLink(ctx context.Context, id uuid.UUID) (string, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	link := whatsapp.Link(order.Phone, whatsapp.StatusMessage(order), s.countryCode)
	if link == "" {
		return "", validationError("order has no usable phone number")
	}
	return link, nil
}

func validateOrderInput(in *OrderInput) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.DeliveryType == "" {
		in.DeliveryType = domain.DeliveryTypeDelivery
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.PaymentMethodCashOnDelivery
	}

	switch {
	case len(in.Items) == 0:
		return ErrEmptyCart
	case in.CustomerName == "":
		return validationError("customer name is required")
	case in.Phone == "":
		return validationError("phone is required")
	}

	switch in.DeliveryType {
	case domain.DeliveryTypeDelivery:
		if in.DeliveryAddress == "" {
			return validationError("delivery address is required for delivery orders")
		}
	case domain.DeliveryTypePickup:
	default:
		return validationError("unknown delivery type %q", in.DeliveryType)
	}

	switch in.PaymentMethod {
	case domain.PaymentMethodCashOnDelivery, domain.PaymentMethodMTNMoMo,
		domain.PaymentMethodAirtelMoney, domain.PaymentMethodBankTransfer:
	default:
		return validationError("unknown payment method %q", in.PaymentMethod)
	}

	for _, item := range in.Items {
		if err := validateQuantity(item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// validateQuantity accepts positive quantities with at most three decimals,
// the precision order lines are stored with
func validateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return validationError("quantity must be positive")
	}
	if !domain.FitsScale(q, domain.QuantityScale) {
		return validationError("quantity supports at most %d decimal places", domain.QuantityScale)
	}
	return nil
}

// validateAmount rejects negative amounts and amounts finer than cents
func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return validationError("%s must not be negative", field)
	}
	if !domain.FitsScale(amount, domain.MoneyScale) {
		return validationError("%s supports at most %d decimal places", field, domain.MoneyScale)
	}
	return nil
}
