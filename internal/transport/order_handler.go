package transport

import (
	"net/http"

	"german-butchery/internal/domain"
	"german-butchery/internal/middleware"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerDetails is the contact, delivery and payment part of an order
type CustomerDetails struct {
	CustomerName    string     `json:"customer_name" validate:"required,max=255"`
	Phone           string     `json:"phone" validate:"required,max=50"`
	Email           string     `json:"email" validate:"omitempty,email"`
	DeliveryType    string     `json:"delivery_type" validate:"omitempty,oneof=delivery pickup"`
	DeliveryAddress string     `json:"delivery_address" validate:"max=500"`
	DeliveryZoneID  *uuid.UUID `json:"delivery_zone_id"`
	PaymentMethod   string     `json:"payment_method" validate:"omitempty,oneof=cod mtn_momo airtel_money bank_transfer"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

// OrderItemRequest is one requested line. Prices are always resolved from
// the catalog.
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Unit      string          `json:"unit" validate:"omitempty,max=20"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest represents an order placed with an explicit item list
type CreateOrderRequest struct {
	CustomerDetails
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest moves an order through its lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// NotifyLinkResponse carries the deep link for messaging the customer
type NotifyLinkResponse struct {
	WhatsAppURL string `json:"whatsapp_url"`
}

func (c CustomerDetails) orderInput(items []service.OrderItemInput) service.OrderInput {
	return service.OrderInput{
		CustomerName:    c.CustomerName,
		Phone:           c.Phone,
		Email:           c.Email,
		DeliveryType:    domain.DeliveryType(c.DeliveryType),
		DeliveryAddress: c.DeliveryAddress,
		DeliveryZoneID:  c.DeliveryZoneID,
		PaymentMethod:   domain.PaymentMethod(c.PaymentMethod),
		Notes:           c.Notes,
		Items:           items,
	}
}

// OrderHandler handles order placement and the admin order desk
type OrderHandler struct {
	orderService    service.OrderService
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, checkoutService service.CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(guards.Checkout...).Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(guards.Staff...)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Put("/{id}/status", h.UpdateStatus)
			r.Get("/{id}/notify-link", h.NotifyLink)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create persists an order and returns it with the WhatsApp handoff link
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{ProductID: item.ProductID, Unit: item.Unit, Quantity: item.Quantity}
	}

	result, err := h.checkoutService.PlaceOrder(r.Context(), req.orderInput(items))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// List handles GET /api/orders?status=&page=&limit=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.orderService.List(r.Context(), r.URL.Query().Get("status"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// NotifyLink returns the deep link that tells the customer about the status
func (h *OrderHandler) NotifyLink(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	link, err := h.orderService.NotifyLink(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to build notify link")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NotifyLinkResponse{WhatsAppURL: link})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete order")
		return
	}

	h.logger.Info("Order deleted", zap.String("order_id", id.String()))
	middleware.RespondWithMessage(w, http.StatusOK, "order deleted successfully")
}
