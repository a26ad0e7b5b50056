package service

import (
	"context"
	"fmt"

	"german-butchery/internal/cart"
	"german-butchery/internal/domain"
	"german-butchery/internal/whatsapp"

	"go.uber.org/zap"
)

// Notifier pushes a text message to a phone number
type Notifier interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// CheckoutResult is the persisted order plus the deep link that hands it to
// the store on WhatsApp. WhatsAppURL is empty when the store has no number.
type CheckoutResult struct {
	Order       *domain.Order `json:"order"`
	WhatsAppURL string        `json:"whatsapp_url,omitempty"`
}

// CheckoutService turns carts and explicit item lists into orders
type CheckoutService interface {
	PlaceOrder(ctx context.Context, in OrderInput) (*CheckoutResult, error)
	CheckoutCart(ctx context.Context, cartID string, in OrderInput) (*CheckoutResult, error)
}

type checkoutService struct {
	orders      OrderService
	settings    SettingService
	carts       cart.Store
	notifier    Notifier
	countryCode string
	logger      *zap.Logger
}

// NewCheckoutService wires checkout. notifier may be nil, in which case the
// deep link is the only handoff.
func NewCheckoutService(
	orders OrderService,
	settings SettingService,
	carts cart.Store,
	notifier Notifier,
	countryCode string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		orders:      orders,
		settings:    settings,
		carts:       carts,
		notifier:    notifier,
		countryCode: countryCode,
		logger:      logger,
	}
}

func (s *checkoutService) PlaceOrder(ctx context.Context, in OrderInput) (*CheckoutResult, error) {
	order, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.handoff(ctx, order), nil
}

// CheckoutCart orders the cart contents and empties the cart. Any items in
// the input are ignored.
func (s *checkoutService) CheckoutCart(ctx context.Context, cartID string, in OrderInput) (*CheckoutResult, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	in.Items = make([]OrderItemInput, 0, len(c.Items))
	for _, item := range c.Items {
		in.Items = append(in.Items, OrderItemInput{
			ProductID: item.ProductID,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("cart_id", cartID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	return s.handoff(ctx, order), nil
}

// handoff builds the deep link and, when a gateway is configured, pushes the
// same message to the store. Neither step can fail the checkout.
func (s *checkoutService) handoff(ctx context.Context, order *domain.Order) *CheckoutResult {
	result := &CheckoutResult{Order: order}

	info, err := s.settings.StoreInfo(ctx)
	if err != nil {
		s.logger.Warn("Failed to load store info for checkout", zap.Error(err))
	}

	number := info.WhatsApp
	if number == "" {
		number = info.Phone
	}
	if number == "" {
		s.logger.Info("Store has no WhatsApp number, skipping deep link",
			zap.String("order_id", order.ID.String()))
		return result
	}

	text := whatsapp.OrderMessage(info.Name, order)
	result.WhatsAppURL = whatsapp.Link(number, text, s.countryCode)

	if s.notifier != nil {
		if err := s.notifier.SendTextMessage(ctx, whatsapp.NormalizePhone(number, s.countryCode), text); err != nil {
			s.logger.Error("Failed to push order to WhatsApp gateway",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	return result
}
